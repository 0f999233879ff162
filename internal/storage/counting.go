package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

type CountingState struct {
	GuildID      string
	CurrentCount int
	LastUserID   string
	MaxCount     int
}

// GetCountingState returns the guild's state, creating the initial
// (0, none, defaultMax) row on first use.
func (s *Store) GetCountingState(ctx context.Context, guildID string, defaultMax int) (CountingState, error) {
	state := CountingState{GuildID: guildID, MaxCount: defaultMax}
	row := s.pool.QueryRow(ctx, `
		SELECT current_count, last_user_id, max_count FROM counting_states WHERE guild_id = $1
	`, guildID)
	err := row.Scan(&state.CurrentCount, &state.LastUserID, &state.MaxCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			_, err = s.pool.Exec(ctx, `
				INSERT INTO counting_states (guild_id, current_count, last_user_id, max_count)
				VALUES ($1, 0, '', $2)
				ON CONFLICT (guild_id) DO NOTHING
			`, guildID, defaultMax)
			return state, err
		}
		return CountingState{}, err
	}
	return state, nil
}

// AcceptCount advances the count only if the stored value still matches what
// the caller read; a false return means an interleaved write won and the
// caller should treat the message as a reset.
func (s *Store) AcceptCount(ctx context.Context, guildID string, expectedCurrent, next int, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE counting_states SET current_count = $1, last_user_id = $2
		WHERE guild_id = $3 AND current_count = $4
	`, next, userID, guildID, expectedCurrent)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ResetCount(ctx context.Context, guildID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE counting_states SET current_count = 0, last_user_id = '' WHERE guild_id = $1
	`, guildID)
	return err
}

// SetCurrentCount is the admin override; it clears last_user_id so the next
// counter is not blocked by turn-taking.
func (s *Store) SetCurrentCount(ctx context.Context, guildID string, count int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO counting_states (guild_id, current_count, last_user_id)
		VALUES ($1, $2, '')
		ON CONFLICT (guild_id) DO UPDATE SET
			current_count = excluded.current_count,
			last_user_id = ''
	`, guildID, count)
	return err
}

func (s *Store) SetMaxCount(ctx context.Context, guildID string, maxCount int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO counting_states (guild_id, max_count)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET max_count = excluded.max_count
	`, guildID, maxCount)
	return err
}
