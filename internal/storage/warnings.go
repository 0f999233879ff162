package storage

import (
	"context"
	"time"
)

// SystemActorID attributes auto-moderation warnings in place of a moderator.
const SystemActorID = "AutoMod"

type Warning struct {
	ID          int64
	GuildID     string
	UserID      string
	ModeratorID string
	Reason      string
	CreatedAt   time.Time
}

func (s *Store) AddWarning(ctx context.Context, warning Warning) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO warnings (guild_id, user_id, moderator_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, warning.GuildID, warning.UserID, warning.ModeratorID, warning.Reason, warning.CreatedAt.Unix())
	return err
}

func (s *Store) ListWarnings(ctx context.Context, guildID, userID string) ([]Warning, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, guild_id, user_id, moderator_id, reason, created_at
		FROM warnings
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at DESC
	`, guildID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var warnings []Warning
	for rows.Next() {
		var warning Warning
		var created int64
		if err := rows.Scan(&warning.ID, &warning.GuildID, &warning.UserID, &warning.ModeratorID, &warning.Reason, &created); err != nil {
			return nil, err
		}
		warning.CreatedAt = time.Unix(created, 0)
		warnings = append(warnings, warning)
	}
	return warnings, rows.Err()
}

func (s *Store) DeleteWarnings(ctx context.Context, guildID, userID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM warnings WHERE guild_id = $1 AND user_id = $2`, guildID, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
