package sqlite

import (
	"context"
	"time"

	"github.com/dexxter/dexxter/internal/auth/domain"
)

type principalsRepo struct {
	db dbtx
}

const principalColumns = `id, username, email, password_hash, role, created_at, updated_at`

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)

	var p domain.Principal
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *principalsRepo) GetPrincipalByUsername(ctx context.Context, username, role string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE username = ? AND role = ?`, username, role)

	var p domain.Principal
	err := row.Scan(&p.ID, &p.Username, &p.Email, &p.PasswordHash, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Principal{}, mapNotFound(err)
	}
	return p, nil
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO principals (id, username, email, password_hash, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Username, p.Email, p.PasswordHash, p.Role, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *principalsRepo) UpdatePasswordHash(ctx context.Context, principalID string, newHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE principals SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), principalID)
	return err
}

func (r *principalsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM principals`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
