package auth_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/auth"
	"stockroom/internal/infrastructure/storage/postgres"
)

// TokenRepo implements auth.TokenRepository.
type TokenRepo struct {
	txm *postgres.TxManager
}

// NewTokenRepo creates a new token repository.
func NewTokenRepo(txm *postgres.TxManager) *TokenRepo {
	return &TokenRepo{txm: txm}
}

// SaveRefreshToken saves a refresh token.
func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	query := `
		INSERT INTO sys_refresh_tokens (id, user_id, token_hash, expires_at, created_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::inet)
	`

	_, err := r.txm.GetQuerier(ctx).Exec(ctx, query,
		token.ID, token.UserID, token.TokenHash, token.ExpiresAt,
		token.CreatedAt, token.UserAgent, token.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves a refresh token by its hash.
func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at,
		       revoked_at, COALESCE(revoked_reason, '') AS revoked_reason,
		       COALESCE(user_agent, '') AS user_agent,
		       COALESCE(ip_address::text, '') AS ip_address
		FROM sys_refresh_tokens WHERE token_hash = $1
	`

	var token auth.RefreshToken
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &token, query, tokenHash); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("token", "")
		}
		return nil, fmt.Errorf("query token: %w", err)
	}

	return &token, nil
}

// RevokeRefreshToken revokes a single refresh token.
func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	query := `UPDATE sys_refresh_tokens SET revoked_at = now(), revoked_reason = $2 WHERE id = $1`
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, query, tokenID, reason); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

// RevokeAllUserTokens revokes all active tokens for a user.
func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	query := `UPDATE sys_refresh_tokens SET revoked_at = now(), revoked_reason = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, query, userID, reason); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	return nil
}

// CleanupExpiredTokens removes expired and long-revoked tokens.
func (r *TokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	query := `DELETE FROM sys_refresh_tokens WHERE expires_at < now() OR revoked_at < now() - INTERVAL '7 days'`
	result, err := r.txm.GetQuerier(ctx).Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("cleanup tokens: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// Ensure interface compliance
var _ auth.TokenRepository = (*TokenRepo)(nil)
