package revocation

import (
	"context"
	"time"

	"github.com/findbi/token-service/internal/domain"
	"github.com/findbi/token-service/internal/infrastructure/database"
)

// Postgres is a revocation registry backed by the revoked_tokens table, for
// deployments that already run Postgres and do not want a second store.
type Postgres struct {
	db *database.Postgres
}

// NewPostgres creates a registry on top of an existing connection pool
func NewPostgres(db *database.Postgres) *Postgres {
	return &Postgres{db: db}
}

// Record inserts the jti. ON CONFLICT DO NOTHING makes the check-and-insert
// atomic per jti: exactly one of any set of concurrent callers sees a row
// inserted. Expired rows are evicted on the way in so the table stays bounded.
func (p *Postgres) Record(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	if !expiresAt.After(time.Now()) {
		return true, nil
	}

	if err := p.Sweep(ctx); err != nil {
		return false, err
	}

	tag, err := p.db.ExecRaw(ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2) ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt,
	)
	if err != nil {
		return false, domain.ErrRevocationUnavailable.WithDetails(err)
	}
	return tag.RowsAffected() == 1, nil
}

// IsRevoked checks whether the jti is currently revoked
func (p *Postgres) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1 AND expires_at > now())`,
		jti,
	).Scan(&revoked)
	if err != nil {
		return false, domain.ErrRevocationUnavailable.WithDetails(err)
	}
	return revoked, nil
}

// Sweep deletes entries whose expiry has passed
func (p *Postgres) Sweep(ctx context.Context) error {
	err := p.db.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < now()`)
	if err != nil {
		return domain.ErrRevocationUnavailable.WithDetails(err)
	}
	return nil
}
