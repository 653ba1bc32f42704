package sqlite

import (
	"context"
	"time"

	"github.com/dexxter/dexxter/internal/auth/domain"
)

type loginChallengesRepo struct {
	db dbtx
}

func (r *loginChallengesRepo) CreateLoginChallenge(ctx context.Context, ch domain.LoginChallenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_challenges (id, principal_id, token_hash, attempts, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ch.ID, ch.PrincipalID, ch.TokenHash, ch.Attempts, ch.CreatedAt, ch.ExpiresAt)
	return err
}

func (r *loginChallengesRepo) GetLoginChallengeByTokenHash(ctx context.Context, hash string, now time.Time) (domain.LoginChallenge, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, principal_id, token_hash, attempts, created_at, expires_at
		 FROM login_challenges
		 WHERE token_hash = ? AND expires_at > ?`,
		hash, now)

	var ch domain.LoginChallenge
	err := row.Scan(&ch.ID, &ch.PrincipalID, &ch.TokenHash, &ch.Attempts, &ch.CreatedAt, &ch.ExpiresAt)
	if err != nil {
		return domain.LoginChallenge{}, mapNotFound(err)
	}
	return ch, nil
}

func (r *loginChallengesRepo) IncrementLoginChallengeAttempts(ctx context.Context, id string) (domain.LoginChallenge, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE login_challenges
		 SET attempts = attempts + 1
		 WHERE id = ?
		 RETURNING id, principal_id, token_hash, attempts, created_at, expires_at`,
		id)

	var ch domain.LoginChallenge
	err := row.Scan(&ch.ID, &ch.PrincipalID, &ch.TokenHash, &ch.Attempts, &ch.CreatedAt, &ch.ExpiresAt)
	if err != nil {
		return domain.LoginChallenge{}, mapNotFound(err)
	}
	return ch, nil
}

func (r *loginChallengesRepo) DeleteLoginChallenge(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM login_challenges WHERE id = ?`, id)
	return err
}

func (r *loginChallengesRepo) DeleteExpiredLoginChallenges(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM login_challenges WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
