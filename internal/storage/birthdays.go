package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

type Birthday struct {
	GuildID string
	UserID  string
	Month   int
	Day     int
}

func (s *Store) UpsertBirthday(ctx context.Context, birthday Birthday) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO birthdays (guild_id, user_id, month, day)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			month = excluded.month,
			day = excluded.day
	`, birthday.GuildID, birthday.UserID, birthday.Month, birthday.Day)
	return err
}

func (s *Store) GetBirthday(ctx context.Context, guildID, userID string) (Birthday, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT guild_id, user_id, month, day FROM birthdays
		WHERE guild_id = $1 AND user_id = $2
	`, guildID, userID)

	var birthday Birthday
	err := row.Scan(&birthday.GuildID, &birthday.UserID, &birthday.Month, &birthday.Day)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Birthday{}, false, nil
		}
		return Birthday{}, false, err
	}
	return birthday, true, nil
}

func (s *Store) DeleteBirthday(ctx context.Context, guildID, userID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM birthdays WHERE guild_id = $1 AND user_id = $2`, guildID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListBirthdaysOn returns every birthday falling on the given calendar date,
// across all guilds, for the daily sweep.
func (s *Store) ListBirthdaysOn(ctx context.Context, month, day int) ([]Birthday, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT guild_id, user_id, month, day FROM birthdays
		WHERE month = $1 AND day = $2
	`, month, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var birthdays []Birthday
	for rows.Next() {
		var birthday Birthday
		if err := rows.Scan(&birthday.GuildID, &birthday.UserID, &birthday.Month, &birthday.Day); err != nil {
			return nil, err
		}
		birthdays = append(birthdays, birthday)
	}
	return birthdays, rows.Err()
}
