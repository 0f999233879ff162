package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"frostmod/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type fakeStore struct {
	nextID      int64
	tickets     map[int64]*storage.Ticket
	transcripts map[string]storage.TicketTranscript
}

func newFakeStore() *fakeStore {
	return &fakeStore{tickets: make(map[int64]*storage.Ticket), transcripts: make(map[string]storage.TicketTranscript)}
}

func (f *fakeStore) GetOpenTicket(_ context.Context, guildID, creatorID string) (storage.Ticket, bool, error) {
	for _, ticket := range f.tickets {
		if ticket.GuildID == guildID && ticket.CreatorID == creatorID && ticket.Status == storage.TicketStatusOpen {
			return *ticket, true, nil
		}
	}
	return storage.Ticket{}, false, nil
}

func (f *fakeStore) CreateTicket(_ context.Context, guildID, creatorID string) (storage.Ticket, error) {
	f.nextID++
	number := 0
	for _, ticket := range f.tickets {
		if ticket.GuildID == guildID {
			number++
		}
	}
	ticket := &storage.Ticket{
		ID:        f.nextID,
		GuildID:   guildID,
		Number:    number + 1,
		CreatorID: creatorID,
		Status:    storage.TicketStatusOpen,
		CreatedAt: time.Now(),
	}
	f.tickets[ticket.ID] = ticket
	return *ticket, nil
}

func (f *fakeStore) SetTicketChannel(_ context.Context, ticketID int64, channelID string) error {
	if ticket, ok := f.tickets[ticketID]; ok {
		ticket.ChannelID = channelID
	}
	return nil
}

func (f *fakeStore) CloseTicket(_ context.Context, ticketID int64, closedBy string, closedAt time.Time) (bool, error) {
	ticket, ok := f.tickets[ticketID]
	if !ok || ticket.Status != storage.TicketStatusOpen {
		return false, nil
	}
	ticket.Status = storage.TicketStatusClosed
	ticket.ClosedBy = closedBy
	ticket.ClosedAt = &closedAt
	return true, nil
}

func (f *fakeStore) SaveTranscript(_ context.Context, transcript storage.TicketTranscript) error {
	if _, ok := f.transcripts[transcript.ChannelID]; ok {
		return nil
	}
	f.transcripts[transcript.ChannelID] = transcript
	return nil
}

func (f *fakeStore) openCount(guildID, creatorID string) int {
	count := 0
	for _, ticket := range f.tickets {
		if ticket.GuildID == guildID && ticket.CreatorID == creatorID && ticket.Status == storage.TicketStatusOpen {
			count++
		}
	}
	return count
}

type fakePlatform struct {
	channels  int
	createErr error
	messages  map[string][]*discordgo.Message
	notices   []string
	deleted   chan string
	introSent []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{messages: make(map[string][]*discordgo.Message), deleted: make(chan string, 4)}
}

func (f *fakePlatform) CreateTicketChannel(guildID, name string, _ []*discordgo.PermissionOverwrite) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.channels++
	return fmt.Sprintf("chan-%s-%d", guildID, f.channels), nil
}

func (f *fakePlatform) SendTicketIntro(channelID string, _ storage.Ticket) error {
	f.introSent = append(f.introSent, channelID)
	return nil
}

func (f *fakePlatform) FetchMessages(channelID string, _ int, beforeID string) ([]*discordgo.Message, error) {
	if beforeID != "" {
		return nil, nil
	}
	return f.messages[channelID], nil
}

func (f *fakePlatform) SendNotice(channelID, content string) error {
	f.notices = append(f.notices, content)
	return nil
}

func (f *fakePlatform) DeleteChannel(channelID string) error {
	f.deleted <- channelID
	return nil
}

func newTestService(store *fakeStore, platform *fakePlatform) *Service {
	return NewService(store, platform, zap.NewNop(), 0)
}

func TestOpenCreatesChannelAndRow(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	svc := newTestService(store, platform)

	ticket, err := svc.Open(context.Background(), "g1", "u1", "mod-role", "bot")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if ticket.Number != 1 || ticket.ChannelID == "" {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
	if len(platform.introSent) != 1 {
		t.Fatalf("expected intro message, got %d", len(platform.introSent))
	}
}

func TestSingleOpenTicketInvariant(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, newFakePlatform())

	if _, err := svc.Open(context.Background(), "g1", "u1", "", "bot"); err != nil {
		t.Fatalf("first open: %v", err)
	}
	_, err := svc.Open(context.Background(), "g1", "u1", "", "bot")
	if !errors.Is(err, ErrTicketExists) {
		t.Fatalf("expected ErrTicketExists, got %v", err)
	}
	if got := store.openCount("g1", "u1"); got != 1 {
		t.Fatalf("expected exactly one open ticket, got %d", got)
	}
}

func TestOpenAllowedAfterClose(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	svc := newTestService(store, platform)

	first, err := svc.Open(context.Background(), "g1", "u1", "", "bot")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := svc.Close(context.Background(), first, "u1"); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := svc.Open(context.Background(), "g1", "u1", "", "bot")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if second.Number != 2 {
		t.Fatalf("expected ticket number 2, got %d", second.Number)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	svc := newTestService(store, platform)

	ticket, err := svc.Open(context.Background(), "g1", "u1", "", "bot")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := svc.Close(context.Background(), ticket, "mod"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := svc.Close(context.Background(), ticket, "mod"); !errors.Is(err, ErrAlreadyClosed) {
		t.Fatalf("expected ErrAlreadyClosed, got %v", err)
	}
	if store.tickets[ticket.ID].Status != storage.TicketStatusClosed {
		t.Fatalf("ticket must remain closed")
	}
}

func TestCloseCapturesTranscriptAndDeletesChannel(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	svc := newTestService(store, platform)

	ticket, err := svc.Open(context.Background(), "g1", "u1", "", "bot")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	platform.messages[ticket.ChannelID] = []*discordgo.Message{
		{ID: "2", Author: &discordgo.User{Username: "staff"}, Content: "how can we help"},
		{ID: "1", Author: &discordgo.User{Username: "u1"}, Content: "hello"},
	}

	if err := svc.Close(context.Background(), ticket, "u1"); err != nil {
		t.Fatalf("close: %v", err)
	}

	transcript, ok := store.transcripts[ticket.ChannelID]
	if !ok {
		t.Fatalf("expected transcript for channel %s", ticket.ChannelID)
	}
	if !strings.Contains(transcript.Content, "u1: hello") || !strings.Contains(transcript.Content, "staff: how can we help") {
		t.Fatalf("transcript missing messages:\n%s", transcript.Content)
	}
	hello := strings.Index(transcript.Content, "hello")
	help := strings.Index(transcript.Content, "how can we help")
	if hello > help {
		t.Fatalf("transcript not chronological:\n%s", transcript.Content)
	}

	select {
	case deleted := <-platform.deleted:
		if deleted != ticket.ChannelID {
			t.Fatalf("deleted wrong channel %s", deleted)
		}
	case <-time.After(time.Second):
		t.Fatalf("channel was not deleted")
	}
}

func TestOpenAllowedAfterChannelCreateFailure(t *testing.T) {
	store := newFakeStore()
	platform := newFakePlatform()
	platform.createErr = errors.New("channel quota reached")
	svc := newTestService(store, platform)

	if _, err := svc.Open(context.Background(), "g1", "u1", "", "bot"); err == nil {
		t.Fatalf("expected open to fail when the channel can't be created")
	}
	if got := store.openCount("g1", "u1"); got != 0 {
		t.Fatalf("failed open must not leave an open ticket, got %d", got)
	}

	platform.createErr = nil
	ticket, err := svc.Open(context.Background(), "g1", "u1", "", "bot")
	if err != nil {
		t.Fatalf("retry after failed open: %v", err)
	}
	if ticket.ChannelID == "" {
		t.Fatalf("retry must produce a usable ticket, got %+v", ticket)
	}
}

func TestCanClose(t *testing.T) {
	ticket := storage.Ticket{CreatorID: "u1"}
	if !CanClose(ticket, "u1", false) {
		t.Fatalf("creator must be able to close")
	}
	if !CanClose(ticket, "mod", true) {
		t.Fatalf("moderator must be able to close")
	}
	if CanClose(ticket, "stranger", false) {
		t.Fatalf("stranger must not close")
	}
}
