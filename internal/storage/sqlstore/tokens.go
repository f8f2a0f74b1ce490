package sqlstore

import (
	"context"
	"fmt"
)

// RevokeToken records a token ID as revoked until it expires.
func (q *queries) RevokeToken(ctx context.Context, jti, userID string, expiresAt int64) error {
	_, err := q.exec(ctx, `
		INSERT INTO revoked_tokens (jti, user_id, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT (jti) DO NOTHING
	`, jti, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (q *queries) IsTokenRevoked(ctx context.Context, jti string, now int64) (bool, error) {
	var n int
	err := q.get(ctx, &n, `
		SELECT COUNT(*) FROM revoked_tokens
		WHERE jti = ? AND expires_at >= ?
	`, jti, now)
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// DeleteExpiredTokens removes revocations that expired before now.
func (q *queries) DeleteExpiredTokens(ctx context.Context, now int64) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return rowsAffected(res)
}
