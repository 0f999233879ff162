package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"frostmod/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// ErrTicketExists is returned when the creator already has an open ticket in
// the guild.
var ErrTicketExists = errors.New("an open ticket already exists for this user")

// ErrAlreadyClosed is returned when a close races another close; the first
// one wins and the transition stays terminal.
var ErrAlreadyClosed = errors.New("ticket is already closed")

// Store is the slice of the database the lifecycle needs.
type Store interface {
	GetOpenTicket(ctx context.Context, guildID, creatorID string) (storage.Ticket, bool, error)
	CreateTicket(ctx context.Context, guildID, creatorID string) (storage.Ticket, error)
	SetTicketChannel(ctx context.Context, ticketID int64, channelID string) error
	CloseTicket(ctx context.Context, ticketID int64, closedBy string, closedAt time.Time) (bool, error)
	SaveTranscript(ctx context.Context, transcript storage.TicketTranscript) error
}

// Platform is the slice of the chat platform the lifecycle needs.
type Platform interface {
	CreateTicketChannel(guildID, name string, overwrites []*discordgo.PermissionOverwrite) (string, error)
	SendTicketIntro(channelID string, ticket storage.Ticket) error
	FetchMessages(channelID string, limit int, beforeID string) ([]*discordgo.Message, error)
	SendNotice(channelID, content string) error
	DeleteChannel(channelID string) error
}

type Service struct {
	store      Store
	platform   Platform
	logger     *zap.Logger
	closeGrace time.Duration
}

func NewService(store Store, platform Platform, logger *zap.Logger, closeGrace time.Duration) *Service {
	return &Service{store: store, platform: platform, logger: logger, closeGrace: closeGrace}
}

// Open creates a restricted channel for the creator plus staff and the bot,
// and persists the ticket row. At most one open ticket per (guild, creator).
func (s *Service) Open(ctx context.Context, guildID, creatorID, modRoleID, botUserID string) (storage.Ticket, error) {
	if _, exists, err := s.store.GetOpenTicket(ctx, guildID, creatorID); err != nil {
		return storage.Ticket{}, fmt.Errorf("open ticket lookup: %w", err)
	} else if exists {
		return storage.Ticket{}, ErrTicketExists
	}

	ticket, err := s.store.CreateTicket(ctx, guildID, creatorID)
	if err != nil {
		return storage.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}

	name := fmt.Sprintf("ticket-%04d", ticket.Number)
	channelID, err := s.platform.CreateTicketChannel(guildID, name, ticketOverwrites(guildID, creatorID, modRoleID, botUserID))
	if err != nil {
		// A ticket without a channel has no close button, so an open row left
		// behind here would block the creator's next ticket forever.
		if _, closeErr := s.store.CloseTicket(ctx, ticket.ID, storage.SystemActorID, time.Now()); closeErr != nil {
			s.logger.Error("orphaned ticket not retired", zap.Int64("ticket_id", ticket.ID), zap.Error(closeErr))
		}
		return storage.Ticket{}, fmt.Errorf("create ticket channel: %w", err)
	}
	ticket.ChannelID = channelID

	if err := s.store.SetTicketChannel(ctx, ticket.ID, channelID); err != nil {
		s.logger.Error("ticket channel not persisted", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}
	if err := s.platform.SendTicketIntro(channelID, ticket); err != nil {
		s.logger.Warn("ticket intro failed", zap.String("channel_id", channelID), zap.Error(err))
	}
	return ticket, nil
}

// Close captures the transcript, marks the row closed and deletes the channel
// after the grace delay so participants can read the closing notice.
func (s *Service) Close(ctx context.Context, ticket storage.Ticket, closerID string) error {
	transcript := s.captureTranscript(ticket)

	closed, err := s.store.CloseTicket(ctx, ticket.ID, closerID, time.Now())
	if err != nil {
		return fmt.Errorf("close ticket: %w", err)
	}
	if !closed {
		return ErrAlreadyClosed
	}

	if err := s.store.SaveTranscript(ctx, storage.TicketTranscript{
		ChannelID: ticket.ChannelID,
		GuildID:   ticket.GuildID,
		TicketID:  ticket.ID,
		Content:   transcript,
		CreatedAt: time.Now(),
	}); err != nil {
		s.logger.Error("transcript not persisted", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}

	notice := fmt.Sprintf("Ticket #%04d closed by <@%s>. This channel will be removed shortly.", ticket.Number, closerID)
	if err := s.platform.SendNotice(ticket.ChannelID, notice); err != nil {
		s.logger.Warn("closing notice failed", zap.String("channel_id", ticket.ChannelID), zap.Error(err))
	}

	channelID := ticket.ChannelID
	go func() {
		time.Sleep(s.closeGrace)
		if err := s.platform.DeleteChannel(channelID); err != nil {
			s.logger.Warn("ticket channel delete failed", zap.String("channel_id", channelID), zap.Error(err))
		}
	}()
	return nil
}

// CanClose applies the lifecycle permission rule: the creator may close their
// own ticket, everyone else needs moderation rights (checked by the caller).
func CanClose(ticket storage.Ticket, closerID string, isModerator bool) bool {
	return closerID == ticket.CreatorID || isModerator
}

func (s *Service) captureTranscript(ticket storage.Ticket) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Transcript of ticket #%04d (guild %s, creator %s)\n", ticket.Number, ticket.GuildID, ticket.CreatorID))

	beforeID := ""
	var pages [][]*discordgo.Message
	for {
		batch, err := s.platform.FetchMessages(ticket.ChannelID, 100, beforeID)
		if err != nil {
			s.logger.Warn("transcript fetch failed", zap.String("channel_id", ticket.ChannelID), zap.Error(err))
			break
		}
		if len(batch) == 0 {
			break
		}
		pages = append(pages, batch)
		beforeID = batch[len(batch)-1].ID
		if len(batch) < 100 {
			break
		}
	}

	// Pages arrive newest-first; rebuild chronological order.
	for i := len(pages) - 1; i >= 0; i-- {
		batch := pages[i]
		for j := len(batch) - 1; j >= 0; j-- {
			msg := batch[j]
			author := "unknown"
			if msg.Author != nil {
				author = msg.Author.Username
			}
			builder.WriteString(fmt.Sprintf("[%s] %s: %s\n", msg.Timestamp.Format(time.RFC3339), author, msg.Content))
		}
	}
	return builder.String()
}

func ticketOverwrites(guildID, creatorID, modRoleID, botUserID string) []*discordgo.PermissionOverwrite {
	view := int64(discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory)
	overwrites := []*discordgo.PermissionOverwrite{
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: int64(discordgo.PermissionViewChannel)},
		{ID: creatorID, Type: discordgo.PermissionOverwriteTypeMember, Allow: view},
	}
	if botUserID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{ID: botUserID, Type: discordgo.PermissionOverwriteTypeMember, Allow: view})
	}
	if modRoleID != "" {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{ID: modRoleID, Type: discordgo.PermissionOverwriteTypeRole, Allow: view})
	}
	return overwrites
}
