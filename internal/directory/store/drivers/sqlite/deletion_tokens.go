package sqlite

import (
	"context"
	"time"

	"github.com/wardenauth/warden/internal/directory/domain"
	"github.com/wardenauth/warden/pkg/idx"
)

type deletionTokensRepo struct {
	db dbtx
}

func (r *deletionTokensRepo) CreateDeletionToken(ctx context.Context, t domain.DeletionToken) error {
	// A new request supersedes any pending one for the same user.
	if _, err := r.db.ExecContext(ctx,
		`UPDATE deletion_tokens SET used = 1 WHERE user_id = ? AND used = 0`,
		t.UserID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO deletion_tokens (id, user_id, token_hash, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(t.ID), t.UserID, t.TokenHash, t.ExpiresAt, t.Used, t.CreatedAt)
	return mapConstraint(err)
}

func (r *deletionTokensRepo) GetActiveDeletionToken(ctx context.Context, userID int64, now time.Time) (domain.DeletionToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, used, created_at
		 FROM deletion_tokens
		 WHERE user_id = ? AND used = 0 AND expires_at > ?
		 ORDER BY created_at DESC
		 LIMIT 1`, userID, now)

	var (
		t  domain.DeletionToken
		id string
	)
	if err := row.Scan(&id, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Used, &t.CreatedAt); err != nil {
		return domain.DeletionToken{}, mapNotFound(err)
	}
	t.ID = idx.ID(id)
	return t, nil
}

func (r *deletionTokensRepo) MarkDeletionTokenUsed(ctx context.Context, id idx.ID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE deletion_tokens SET used = 1 WHERE id = ? AND used = 0`, string(id))
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *deletionTokensRepo) DeleteExpiredDeletionTokens(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM deletion_tokens WHERE expires_at <= ? OR used = 1`, now)
	return err
}
