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

type TapRepository struct {
	pool *pgxpool.Pool
}

func NewTapRepository(pool *pgxpool.Pool) *TapRepository {
	return &TapRepository{pool: pool}
}

func (r *TapRepository) LatestTap(ctx context.Context, profileID string) (*domain.TapEvent, error) {
	query := `
		SELECT profile_id, tapped_at
		FROM taps
		WHERE profile_id = $1
		ORDER BY tapped_at DESC
		LIMIT 1`

	var ev domain.TapEvent
	err := r.pool.QueryRow(ctx, query, profileID).Scan(&ev.ProfileID, &ev.TappedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoTapHistory
		}
		return nil, fmt.Errorf("latest tap: %w", err)
	}
	return &ev, nil
}

func (r *TapRepository) RecordTap(ctx context.Context, profileID string, tappedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO taps (profile_id, tapped_at) VALUES ($1, $2)`,
		profileID, tappedAt,
	)
	if err != nil {
		return fmt.Errorf("record tap: %w", err)
	}
	return nil
}

func (r *TapRepository) ListTaps(ctx context.Context, profileID string, since time.Time) ([]domain.TapEvent, error) {
	query := `
		SELECT profile_id, tapped_at
		FROM taps
		WHERE profile_id = $1 AND tapped_at >= $2
		ORDER BY tapped_at ASC`

	rows, err := r.pool.Query(ctx, query, profileID, since)
	if err != nil {
		return nil, fmt.Errorf("list taps: %w", err)
	}
	defer rows.Close()

	var events []domain.TapEvent
	for rows.Next() {
		var ev domain.TapEvent
		if err := rows.Scan(&ev.ProfileID, &ev.TappedAt); err != nil {
			return nil, fmt.Errorf("scan tap: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list taps: %w", err)
	}
	return events, nil
}

func (r *TapRepository) SetTicket(ctx context.Context, profileID string, slot domain.TicketSlot, activatedAt *time.Time) error {
	var column string
	switch slot {
	case domain.TicketSlot1:
		column = "ticket1_activated_at"
	case domain.TicketSlot2:
		column = "ticket2_activated_at"
	default:
		return domain.ErrInvalidTicket
	}

	query := fmt.Sprintf(
		`UPDATE profiles SET %s = $1, updated_at = NOW() WHERE id = $2`, column)
	_, err := r.pool.Exec(ctx, query, activatedAt, profileID)
	if err != nil {
		return fmt.Errorf("set ticket slot %d: %w", slot, err)
	}
	return nil
}

func (r *TapRepository) ListActiveSince(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Profile, error) {
	query := `
		SELECT p.id, p.email, p.external_alias,
		       p.ticket1_activated_at, p.ticket2_activated_at,
		       p.created_at, p.updated_at
		FROM profiles p
		WHERE EXISTS (
			SELECT 1 FROM taps t
			WHERE t.profile_id = p.id AND t.tapped_at > $1
		)
		ORDER BY p.updated_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("list active profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active profiles: %w", err)
	}
	return profiles, nil
}
