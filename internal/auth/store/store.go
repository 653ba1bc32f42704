package store

import (
	"context"
	"errors"
	"time"

	"github.com/dexxter/dexxter/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to stop callers from accidentally nesting transactions.
type Store interface {
	Principals() Principals
	OneTimeCodes() OneTimeCodes
	LoginChallenges() LoginChallenges

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Principals interface {
	// GetPrincipalByID returns a principal by id.
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)

	// GetPrincipalByUsername looks up a principal within a role. Admins and
	// resellers authenticate on separate endpoints, so the role narrows the
	// search.
	GetPrincipalByUsername(ctx context.Context, username, role string) (domain.Principal, error)

	// CreatePrincipal inserts a new principal (id is provided by app via ULID).
	CreatePrincipal(ctx context.Context, p domain.Principal) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, principalID string, newHash string) error

	// IsEmpty returns true if there are no principals.
	IsEmpty(ctx context.Context) (bool, error)
}

type OneTimeCodes interface {
	// CreateOneTimeCode stores a freshly minted verification code.
	CreateOneTimeCode(ctx context.Context, code domain.OneTimeCode) error

	// GetLatestValidCode returns the newest unconsumed, unexpired code for a
	// principal.
	GetLatestValidCode(ctx context.Context, principalID string, now time.Time) (domain.OneTimeCode, error)

	// ConsumeOneTimeCode atomically marks the principal's newest valid code
	// as consumed if it matches the submitted value. It returns true only
	// when the submission won the consumption; a second submission of the
	// same code, an expired code, or a superseded code all return false.
	ConsumeOneTimeCode(ctx context.Context, principalID, code string, now time.Time) (bool, error)

	// InvalidateCodes marks every outstanding code for a principal consumed.
	InvalidateCodes(ctx context.Context, principalID string) error

	// DeleteExpiredOneTimeCodes removes codes past their validity window (housekeeping).
	DeleteExpiredOneTimeCodes(ctx context.Context) error
}

type LoginChallenges interface {
	// CreateLoginChallenge records a pending admin login awaiting its code.
	CreateLoginChallenge(ctx context.Context, ch domain.LoginChallenge) error

	// GetLoginChallengeByTokenHash returns a not-expired challenge by the
	// fingerprint of its opaque token.
	GetLoginChallengeByTokenHash(ctx context.Context, hash string, now time.Time) (domain.LoginChallenge, error)

	// IncrementLoginChallengeAttempts bumps the failed-submission counter and
	// returns the updated challenge.
	IncrementLoginChallengeAttempts(ctx context.Context, id string) (domain.LoginChallenge, error)

	// DeleteLoginChallenge removes a challenge once the login completes or is
	// abandoned.
	DeleteLoginChallenge(ctx context.Context, id string) error

	// DeleteExpiredLoginChallenges removes stale challenges (housekeeping).
	DeleteExpiredLoginChallenges(ctx context.Context) error
}
