package storage

import (
	"context"
	"time"
)

func (s *Store) AddJoinRecord(ctx context.Context, guildID, userID, username string, joinedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO member_joins (guild_id, user_id, username, joined_at)
		VALUES ($1, $2, $3, $4)
	`, guildID, userID, username, joinedAt.Unix())
	return err
}

func (s *Store) AddLeaveRecord(ctx context.Context, guildID, userID, username string, leftAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO member_leaves (guild_id, user_id, username, left_at)
		VALUES ($1, $2, $3, $4)
	`, guildID, userID, username, leftAt.Unix())
	return err
}
