package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	TicketStatusOpen   = "open"
	TicketStatusClosed = "closed"
)

type Ticket struct {
	ID        int64
	GuildID   string
	Number    int
	CreatorID string
	ChannelID string
	Status    string
	CreatedAt time.Time
	ClosedAt  *time.Time
	ClosedBy  string
}

type TicketTranscript struct {
	ChannelID string
	GuildID   string
	TicketID  int64
	Content   string
	CreatedAt time.Time
}

func (s *Store) GetOpenTicket(ctx context.Context, guildID, creatorID string) (Ticket, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, guild_id, number, creator_id, channel_id, status, created_at, closed_at, closed_by
		FROM tickets
		WHERE guild_id = $1 AND creator_id = $2 AND status = 'open'
	`, guildID, creatorID)
	return scanTicket(row)
}

func (s *Store) GetTicketByChannel(ctx context.Context, channelID string) (Ticket, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, guild_id, number, creator_id, channel_id, status, created_at, closed_at, closed_by
		FROM tickets
		WHERE channel_id = $1
	`, channelID)
	return scanTicket(row)
}

// CreateTicket inserts the row and derives the per-guild ticket number from the
// existing row count inside the same transaction, so concurrent creations in
// one guild cannot hand out the same number.
func (s *Store) CreateTicket(ctx context.Context, guildID, creatorID string) (Ticket, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Ticket{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Advisory lock keyed by guild serializes numbering for concurrent creations.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, guildID); err != nil {
		return Ticket{}, err
	}
	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE guild_id = $1`, guildID).Scan(&count); err != nil {
		return Ticket{}, err
	}

	now := time.Now()
	ticket := Ticket{
		GuildID:   guildID,
		Number:    count + 1,
		CreatorID: creatorID,
		Status:    TicketStatusOpen,
		CreatedAt: now,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO tickets (guild_id, number, creator_id, status, created_at)
		VALUES ($1, $2, $3, 'open', $4)
		RETURNING id
	`, guildID, ticket.Number, creatorID, now.Unix()).Scan(&ticket.ID)
	if err != nil {
		return Ticket{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Ticket{}, err
	}
	return ticket, nil
}

func (s *Store) SetTicketChannel(ctx context.Context, ticketID int64, channelID string) error {
	_, err := s.pool.Exec(ctx, `UPDATE tickets SET channel_id = $1 WHERE id = $2`, channelID, ticketID)
	return err
}

// CloseTicket transitions open -> closed; the status predicate makes the
// transition terminal even under concurrent closes.
func (s *Store) CloseTicket(ctx context.Context, ticketID int64, closedBy string, closedAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tickets SET status = 'closed', closed_at = $1, closed_by = $2
		WHERE id = $3 AND status = 'open'
	`, closedAt.Unix(), closedBy, ticketID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) SaveTranscript(ctx context.Context, transcript TicketTranscript) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ticket_transcripts (channel_id, guild_id, ticket_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel_id) DO NOTHING
	`, transcript.ChannelID, transcript.GuildID, transcript.TicketID, transcript.Content, transcript.CreatedAt.Unix())
	return err
}

func scanTicket(row pgx.Row) (Ticket, bool, error) {
	var ticket Ticket
	var created int64
	var closed *int64
	err := row.Scan(&ticket.ID, &ticket.GuildID, &ticket.Number, &ticket.CreatorID, &ticket.ChannelID, &ticket.Status, &created, &closed, &ticket.ClosedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ticket{}, false, nil
		}
		return Ticket{}, false, err
	}
	ticket.CreatedAt = time.Unix(created, 0)
	if closed != nil {
		value := time.Unix(*closed, 0)
		ticket.ClosedAt = &value
	}
	return ticket, true, nil
}
