package sqlinline

const QInsertUsageEvent = `--sql a4335a05-9bdd-4b41-b18e-8aad576af944
insert into usage_events(id, request_id, event_type, success, latency_ms, created_at, properties)
values (gen_random_uuid(), $1::text, $2::text, $3::boolean, $4::int, now(), coalesce($5::jsonb, '{}'::jsonb));
`
