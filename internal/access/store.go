package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed grant store.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a grant store with constructor injection.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// HasToolAccess implements Checker against the tool_access_grants table.
func (s *Store) HasToolAccess(ctx context.Context, userID uuid.UUID, tool string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tool_access_grants
			WHERE user_id = $1 AND tool_name = $2
		)
	`, userID, tool).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking tool access for %s/%s: %w", userID, tool, err)
	}
	return exists, nil
}

// Grant records a grant. Granting an already-granted tool is a no-op.
func (s *Store) Grant(ctx context.Context, userID uuid.UUID, tool string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tool_access_grants (user_id, tool_name)
		VALUES ($1, $2)
		ON CONFLICT (user_id, tool_name) DO NOTHING
	`, userID, tool)
	if err != nil {
		return fmt.Errorf("granting %s to %s: %w", tool, userID, err)
	}
	s.logger.Info("tool access granted", "user_id", userID, "tool", tool)
	return nil
}

// Revoke removes a grant. Revoking an absent grant is a no-op.
func (s *Store) Revoke(ctx context.Context, userID uuid.UUID, tool string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM tool_access_grants
		WHERE user_id = $1 AND tool_name = $2
	`, userID, tool)
	if err != nil {
		return fmt.Errorf("revoking %s from %s: %w", tool, userID, err)
	}
	s.logger.Info("tool access revoked", "user_id", userID, "tool", tool)
	return nil
}

// ListTools returns the tools granted to a user, ordered by name.
func (s *Store) ListTools(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tool_name FROM tool_access_grants
		WHERE user_id = $1
		ORDER BY tool_name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tools for %s: %w", userID, err)
	}
	defer rows.Close()

	var tools []string
	for rows.Next() {
		var tool string
		if err := rows.Scan(&tool); err != nil {
			return nil, fmt.Errorf("scanning tool name: %w", err)
		}
		tools = append(tools, tool)
	}
	return tools, rows.Err()
}
