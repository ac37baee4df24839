package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sunny-JP/hw-ba-cafe/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) FindOrCreate(ctx context.Context, email string) (*domain.Profile, error) {
	// external_alias defaults to the generated id; the push provider
	// addresses all of a profile's devices through it.
	query := `
		INSERT INTO profiles (email)
		VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET updated_at = NOW()
		RETURNING id, email, external_alias,
		          ticket1_activated_at, ticket2_activated_at,
		          created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, email)
	return scanProfile(row)
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, email, external_alias,
		       ticket1_activated_at, ticket2_activated_at,
		       created_at, updated_at
		FROM profiles
		WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanProfile(row)
}

func (r *ProfileRepository) Upsert(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		id,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) CreateMagicToken(ctx context.Context, profileID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO magic_tokens (profile_id, token_hash, expires_at) VALUES ($1, $2, $3)`,
		profileID, tokenHash, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("create magic token: %w", err)
	}
	return nil
}

func (r *ProfileRepository) ClaimMagicToken(ctx context.Context, tokenHash string) (*domain.MagicToken, error) {
	// Single-use: the UPDATE only matches unused, unexpired tokens, so a
	// replayed link loses the race atomically.
	query := `
		UPDATE magic_tokens
		SET    used_at = NOW()
		WHERE  token_hash = $1
		  AND  used_at IS NULL
		  AND  expires_at > NOW()
		RETURNING id, profile_id, token_hash, expires_at, used_at, created_at`

	var mt domain.MagicToken
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&mt.ID, &mt.ProfileID, &mt.TokenHash, &mt.ExpiresAt, &mt.UsedAt, &mt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("claim magic token: %w", err)
	}
	return &mt, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.ExternalAlias,
		&p.Ticket1ActivatedAt, &p.Ticket2ActivatedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}
