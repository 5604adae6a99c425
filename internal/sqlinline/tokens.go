package sqlinline

const QSelectIntegrationToken = `--sql ce64f9f9-3bce-4b29-809b-8c70e08ff2af
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql ef7753cf-9b52-4d65-9966-91e0e3c3a177
insert into integration_tokens (id, provider, token, properties, created_at, updated_at)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now(), now())
on conflict (provider) do update set
    token = excluded.token,
    properties = excluded.properties,
    updated_at = now();
`
