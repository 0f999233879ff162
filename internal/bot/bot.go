package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frostmod/internal/authz"
	"frostmod/internal/config"
	"frostmod/internal/filter"
	"frostmod/internal/storage"
	"frostmod/internal/tickets"
	"frostmod/internal/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

const (
	colorAction  = 0x5865F2
	colorSuccess = 0x57F287
	colorError   = 0xED4245
	colorWarn    = 0xFEE75C
)

type Bot struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *storage.Store
	filter     *filter.Filter
	authorizer *authz.Authorizer
	tickets    *tickets.Service
	session    *discordgo.Session
	scheduler  *gocron.Scheduler
	countLocks *utils.KeyedMutex
	startedAt  time.Time

	presenceMu  sync.Mutex
	presenceIdx int
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, contentFilter *filter.Filter, authorizer *authz.Authorizer) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	b := &Bot{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		filter:     contentFilter,
		authorizer: authorizer,
		session:    session,
		scheduler:  gocron.NewScheduler(time.UTC),
		countLocks: utils.NewKeyedMutex(),
		startedAt:  time.Now(),
	}

	grace := time.Duration(cfg.Tickets.CloseGraceSeconds) * time.Second
	b.tickets = tickets.NewService(store, &sessionPlatform{session: session}, logger, grace)

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onGuildMemberRemove)
	b.session.AddHandler(b.onChannelCreate)
	b.session.AddHandler(b.onChannelDelete)
	b.session.AddHandler(b.onUserUpdate)
	b.session.AddHandler(b.onVoiceStateUpdate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	b.startSchedulers()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready",
		zap.String("user", session.State.User.Username),
		zap.Int("guilds", len(event.Guilds)))
	b.rotatePresence()
}

func (b *Bot) startSchedulers() {
	if _, err := b.scheduler.Every(b.cfg.Presence.RotateSeconds).Seconds().Do(b.rotatePresence); err != nil {
		b.logger.Warn("presence rotator not scheduled", zap.Error(err))
	}
	if _, err := b.scheduler.Every(1).Day().At("00:00").Do(b.birthdaySweep); err != nil {
		b.logger.Warn("birthday sweep not scheduled", zap.Error(err))
	}
	b.scheduler.StartAsync()
}

func (b *Bot) rotatePresence() {
	statuses := b.cfg.Presence.Statuses
	if len(statuses) == 0 {
		return
	}
	b.presenceMu.Lock()
	status := statuses[b.presenceIdx%len(statuses)]
	b.presenceIdx++
	b.presenceMu.Unlock()
	if err := b.session.UpdateGameStatus(0, status); err != nil {
		b.logger.Debug("presence update failed", zap.Error(err))
	}
}

// birthdaySweep announces today's birthdays in every guild that configured a
// birthday channel. Missed runs are not backfilled.
func (b *Bot) birthdaySweep() {
	ctx := context.Background()
	now := time.Now().UTC()
	birthdays, err := b.store.ListBirthdaysOn(ctx, int(now.Month()), now.Day())
	if err != nil {
		b.logger.Error("birthday sweep query failed", zap.Error(err))
		return
	}
	byGuild := make(map[string][]storage.Birthday)
	for _, birthday := range birthdays {
		byGuild[birthday.GuildID] = append(byGuild[birthday.GuildID], birthday)
	}
	for guildID, list := range byGuild {
		b.announceBirthdays(ctx, guildID, list)
	}
}

func (b *Bot) sweepGuild(ctx context.Context, guildID string) int {
	now := time.Now().UTC()
	birthdays, err := b.store.ListBirthdaysOn(ctx, int(now.Month()), now.Day())
	if err != nil {
		b.logger.Error("birthday sweep query failed", zap.Error(err))
		return 0
	}
	var list []storage.Birthday
	for _, birthday := range birthdays {
		if birthday.GuildID == guildID {
			list = append(list, birthday)
		}
	}
	b.announceBirthdays(ctx, guildID, list)
	return len(list)
}

func (b *Bot) announceBirthdays(ctx context.Context, guildID string, list []storage.Birthday) {
	if len(list) == 0 {
		return
	}
	cfg := b.guildConfig(ctx, guildID)
	if cfg.BirthdayChannelID == "" {
		return
	}
	mentions := ""
	for i, birthday := range list {
		if i > 0 {
			mentions += ", "
		}
		mentions += "<@" + birthday.UserID + ">"
	}
	embed := &discordgo.MessageEmbed{
		Title:       "Happy Birthday! 🎂",
		Description: fmt.Sprintf("Wishing a wonderful day to %s!", mentions),
		Color:       colorSuccess,
	}
	if _, err := b.session.ChannelMessageSendEmbed(cfg.BirthdayChannelID, embed); err != nil {
		b.logger.Warn("birthday announcement failed", zap.String("guild_id", guildID), zap.Error(err))
	}
}

// guildConfig reads the guild's row, falling back to defaults on any failure
// so a database blip never disables the bot.
func (b *Bot) guildConfig(ctx context.Context, guildID string) storage.GuildConfig {
	defaults := storage.GuildConfig{
		GuildID:     guildID,
		FilterLevel: b.cfg.Moderation.DefaultFilterLevel,
	}
	cfg, err := b.store.GetGuildConfig(ctx, guildID, defaults)
	if err != nil {
		b.logger.Warn("guild config fallback", zap.String("guild_id", guildID), zap.Error(err))
		return defaults
	}
	return cfg
}

func (b *Bot) guildFromInteraction(session *discordgo.Session, interaction *discordgo.InteractionCreate) *discordgo.Guild {
	guild, err := session.State.Guild(interaction.GuildID)
	if err == nil {
		return guild
	}
	guild, err = session.Guild(interaction.GuildID)
	if err != nil {
		return nil
	}
	return guild
}

func (b *Bot) resolveAuditActor(guildID string, actionType discordgo.AuditLogAction, targetID string) string {
	logs, err := b.session.GuildAuditLog(guildID, "", "", int(actionType), 5)
	if err != nil || logs == nil {
		return ""
	}
	for _, entry := range logs.AuditLogEntries {
		if entry == nil {
			continue
		}
		if targetID != "" && entry.TargetID != targetID {
			continue
		}
		ts, err := discordgo.SnowflakeTimestamp(entry.ID)
		if err == nil && time.Since(ts) > 30*time.Second {
			continue
		}
		return entry.UserID
	}
	return ""
}

func (b *Bot) logToGuildChannel(ctx context.Context, guildID string, embed *discordgo.MessageEmbed) {
	cfg := b.guildConfig(ctx, guildID)
	if cfg.LogsChannelID == "" {
		return
	}
	_, _ = b.session.ChannelMessageSendEmbed(cfg.LogsChannelID, embed)
}

// sendTransient posts a short-lived notice and removes it after a few seconds.
func (b *Bot) sendTransient(channelID, content string) {
	msg, err := b.session.ChannelMessageSend(channelID, content)
	if err != nil {
		b.logger.Debug("transient notice failed", zap.String("channel_id", channelID), zap.Error(err))
		return
	}
	go func() {
		time.Sleep(5 * time.Second)
		_ = b.session.ChannelMessageDelete(channelID, msg.ID)
	}()
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(session, interaction, "No response available.", ephemeral)
		return
	}
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

// sessionPlatform adapts the live discord session to the ticket lifecycle.
type sessionPlatform struct {
	session *discordgo.Session
}

func (p *sessionPlatform) CreateTicketChannel(guildID, name string, overwrites []*discordgo.PermissionOverwrite) (string, error) {
	channel, err := p.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func (p *sessionPlatform) SendTicketIntro(channelID string, ticket storage.Ticket) error {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Ticket #%04d", ticket.Number),
		Description: fmt.Sprintf(
			"<@%s>, thanks for reaching out. Describe your issue and a staff member will be with you shortly.",
			ticket.CreatorID),
		Color: colorAction,
	}
	_, err := p.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Close Ticket",
						Style:    discordgo.DangerButton,
						CustomID: "ticket_close",
					},
				},
			},
		},
	})
	return err
}

func (p *sessionPlatform) FetchMessages(channelID string, limit int, beforeID string) ([]*discordgo.Message, error) {
	return p.session.ChannelMessages(channelID, limit, beforeID, "", "")
}

func (p *sessionPlatform) SendNotice(channelID, content string) error {
	_, err := p.session.ChannelMessageSend(channelID, content)
	return err
}

func (p *sessionPlatform) DeleteChannel(channelID string) error {
	_, err := p.session.ChannelDelete(channelID)
	return err
}
