package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"stockstudio/internal/infra"
	"stockstudio/internal/sqlinline"
)

// Supported completion providers.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
)

// Store persists provider API keys in the integration_tokens table. A token
// may be a single key or a comma-joined blob of several keys; ParseKeys turns
// it into a pool.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKeys(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

func (s *Store) GroqAPIKeys(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGroq)
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// SetToken upserts the key blob for a provider.
func (s *Store) SetToken(ctx context.Context, provider, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("api key is required")
	}
	switch provider {
	case ProviderGemini, ProviderGroq:
	default:
		return errors.New("unsupported provider " + provider)
	}
	payload, err := json.Marshal(map[string]any{"keys": len(ParseKeys(token))})
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, payload)
	return err
}
