package sqlite

import (
	"context"
	"time"

	"github.com/dexxter/dexxter/internal/auth/domain"
)

type oneTimeCodesRepo struct {
	db dbtx
}

func (r *oneTimeCodesRepo) CreateOneTimeCode(ctx context.Context, code domain.OneTimeCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO one_time_codes (id, principal_id, code, consumed, issued_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		code.ID, code.PrincipalID, code.Code, code.Consumed, code.IssuedAt, code.ExpiresAt)
	return err
}

func (r *oneTimeCodesRepo) GetLatestValidCode(ctx context.Context, principalID string, now time.Time) (domain.OneTimeCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, principal_id, code, consumed, issued_at, expires_at
		 FROM one_time_codes
		 WHERE principal_id = ? AND consumed = 0 AND expires_at > ?
		 ORDER BY issued_at DESC, id DESC
		 LIMIT 1`,
		principalID, now)

	var c domain.OneTimeCode
	err := row.Scan(&c.ID, &c.PrincipalID, &c.Code, &c.Consumed, &c.IssuedAt, &c.ExpiresAt)
	if err != nil {
		return domain.OneTimeCode{}, mapNotFound(err)
	}
	return c, nil
}

// ConsumeOneTimeCode is a single conditional UPDATE so that concurrent
// submissions of the same code race on the database's row lock and exactly
// one of them observes rows-affected of 1. The inner subquery pins the
// update to the newest outstanding code, so anything older has been
// superseded and cannot be consumed even if its digits match.
func (r *oneTimeCodesRepo) ConsumeOneTimeCode(ctx context.Context, principalID, code string, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE one_time_codes
		 SET consumed = 1
		 WHERE principal_id = ? AND code = ? AND consumed = 0 AND expires_at > ?
		   AND id = (
		       SELECT id FROM one_time_codes
		       WHERE principal_id = ? AND consumed = 0 AND expires_at > ?
		       ORDER BY issued_at DESC, id DESC
		       LIMIT 1
		   )`,
		principalID, code, now, principalID, now)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *oneTimeCodesRepo) InvalidateCodes(ctx context.Context, principalID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE one_time_codes SET consumed = 1 WHERE principal_id = ? AND consumed = 0`,
		principalID)
	return err
}

func (r *oneTimeCodesRepo) DeleteExpiredOneTimeCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM one_time_codes WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
