package bot

import (
	"context"
	"fmt"
	"time"

	"frostmod/internal/counting"
	"frostmod/internal/filter"
	"frostmod/internal/storage"
	"frostmod/internal/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.Member == nil || event.User == nil || event.GuildID == "" {
		return
	}
	ctx := context.Background()
	guildID := event.GuildID
	user := event.User

	guildName := ""
	memberCount := 0
	if guild, err := session.State.Guild(guildID); err == nil {
		guildName = guild.Name
		memberCount = guild.MemberCount
	}

	if err := b.store.TouchGuild(ctx, guildID, guildName); err != nil {
		b.logger.Warn("guild row touch failed", zap.String("guild_id", guildID), zap.Error(err))
	}
	if err := b.store.AddJoinRecord(ctx, guildID, user.ID, user.Username, time.Now()); err != nil {
		b.logger.Warn("join audit failed", zap.String("guild_id", guildID), zap.Error(err))
	}

	cfg := b.guildConfig(ctx, guildID)

	if cfg.JoinRoleID != "" {
		if err := session.GuildMemberRoleAdd(guildID, user.ID, cfg.JoinRoleID); err != nil {
			b.logger.Warn("join role assignment failed",
				zap.String("guild_id", guildID),
				zap.String("user_id", user.ID),
				zap.Error(err))
		}
	}

	if cfg.WelcomeChannelID != "" && cfg.WelcomeMessage != "" {
		embed := &discordgo.MessageEmbed{
			Description: utils.RenderMemberTemplate(cfg.WelcomeMessage, user.ID, memberCount),
			Color:       colorSuccess,
		}
		if _, err := session.ChannelMessageSendEmbed(cfg.WelcomeChannelID, embed); err != nil {
			b.logger.Warn("welcome message failed", zap.String("guild_id", guildID), zap.Error(err))
		}
	}
}

func (b *Bot) onGuildMemberRemove(session *discordgo.Session, event *discordgo.GuildMemberRemove) {
	if event.Member == nil || event.User == nil || event.GuildID == "" {
		return
	}
	ctx := context.Background()
	guildID := event.GuildID
	user := event.User

	if err := b.store.AddLeaveRecord(ctx, guildID, user.ID, user.Username, time.Now()); err != nil {
		b.logger.Warn("leave audit failed", zap.String("guild_id", guildID), zap.Error(err))
	}

	cfg := b.guildConfig(ctx, guildID)
	channelID := cfg.LeaveChannelID
	if channelID == "" {
		channelID = cfg.LogsChannelID
	}
	if channelID == "" || cfg.LeaveMessage == "" {
		return
	}

	memberCount := 0
	if guild, err := session.State.Guild(guildID); err == nil {
		memberCount = guild.MemberCount
	}
	embed := &discordgo.MessageEmbed{
		Description: utils.RenderMemberTemplate(cfg.LeaveMessage, user.ID, memberCount),
		Color:       colorWarn,
	}
	if _, err := session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Warn("leave message failed", zap.String("guild_id", guildID), zap.Error(err))
	}
}

func (b *Bot) onChannelCreate(session *discordgo.Session, event *discordgo.ChannelCreate) {
	if event.Channel == nil || event.Channel.GuildID == "" {
		return
	}
	ctx := context.Background()
	actor := b.resolveAuditActor(event.Channel.GuildID, discordgo.AuditLogActionChannelCreate, event.Channel.ID)
	description := fmt.Sprintf("Channel <#%s> (`%s`) was created.", event.Channel.ID, event.Channel.Name)
	if actor != "" {
		description += fmt.Sprintf(" By <@%s>.", actor)
	}
	b.logToGuildChannel(ctx, event.Channel.GuildID, &discordgo.MessageEmbed{
		Title:       "Channel Created",
		Description: description,
		Color:       colorAction,
	})
}

func (b *Bot) onChannelDelete(session *discordgo.Session, event *discordgo.ChannelDelete) {
	if event.Channel == nil || event.Channel.GuildID == "" {
		return
	}
	ctx := context.Background()
	actor := b.resolveAuditActor(event.Channel.GuildID, discordgo.AuditLogActionChannelDelete, event.Channel.ID)
	description := fmt.Sprintf("Channel `%s` was deleted.", event.Channel.Name)
	if actor != "" {
		description += fmt.Sprintf(" By <@%s>.", actor)
	}
	b.logToGuildChannel(ctx, event.Channel.GuildID, &discordgo.MessageEmbed{
		Title:       "Channel Deleted",
		Description: description,
		Color:       colorError,
	})
}

// onUserUpdate fans the change out to the logs channel of every guild the user
// is cached in; user updates arrive without a guild id.
func (b *Bot) onUserUpdate(session *discordgo.Session, event *discordgo.UserUpdate) {
	if event.User == nil {
		return
	}
	ctx := context.Background()
	for _, guild := range session.State.Guilds {
		if guild == nil {
			continue
		}
		if _, err := session.State.Member(guild.ID, event.User.ID); err != nil {
			continue
		}
		b.logToGuildChannel(ctx, guild.ID, &discordgo.MessageEmbed{
			Title:       "User Updated",
			Description: fmt.Sprintf("<@%s> is now known as `%s`.", event.User.ID, event.User.Username),
			Color:       colorAction,
		})
	}
}

func (b *Bot) onVoiceStateUpdate(session *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	if event.VoiceState == nil || event.GuildID == "" {
		return
	}
	ctx := context.Background()

	before := ""
	if event.BeforeUpdate != nil {
		before = event.BeforeUpdate.ChannelID
	}
	after := event.ChannelID
	if before == after {
		return
	}

	var description string
	switch {
	case before == "":
		description = fmt.Sprintf("<@%s> joined voice channel <#%s>.", event.UserID, after)
	case after == "":
		description = fmt.Sprintf("<@%s> left voice channel <#%s>.", event.UserID, before)
	default:
		description = fmt.Sprintf("<@%s> moved from <#%s> to <#%s>.", event.UserID, before, after)
	}
	b.logToGuildChannel(ctx, event.GuildID, &discordgo.MessageEmbed{
		Title:       "Voice Activity",
		Description: description,
		Color:       colorAction,
	})
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	ctx := context.Background()
	cfg := b.guildConfig(ctx, msg.GuildID)

	if cfg.CountingChannelID != "" && msg.ChannelID == cfg.CountingChannelID {
		b.handleCountingMessage(ctx, session, msg)
		return
	}

	level, ok := filter.ParseLevel(cfg.FilterLevel)
	if !ok {
		level = filter.LevelLight
	}
	if blocked, term := b.filter.Classify(msg.Content, level); blocked {
		b.handleFilteredMessage(ctx, session, msg, cfg, term)
	}
}

// handleCountingMessage runs one counting turn under the guild's mutex so two
// racing messages cannot both read the same state.
func (b *Bot) handleCountingMessage(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate) {
	b.countLocks.Lock(msg.GuildID)
	defer b.countLocks.Unlock(msg.GuildID)

	stored, err := b.store.GetCountingState(ctx, msg.GuildID, b.cfg.Counting.DefaultMaxCount)
	if err != nil {
		b.logger.Error("counting state read failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
		return
	}

	state := counting.State{
		Count:      stored.CurrentCount,
		LastUserID: stored.LastUserID,
		MaxCount:   stored.MaxCount,
	}
	result := counting.Advance(state, msg.Author.ID, msg.Content)

	switch result.Outcome {
	case counting.OutcomeNotNumber:
		_ = session.ChannelMessageDelete(msg.ChannelID, msg.ID)
		b.sendTransient(msg.ChannelID, fmt.Sprintf("<@%s> numbers only in the counting channel.", msg.Author.ID))
	case counting.OutcomeSameUser:
		_ = session.ChannelMessageDelete(msg.ChannelID, msg.ID)
		b.sendTransient(msg.ChannelID, fmt.Sprintf("<@%s> you can't count twice in a row.", msg.Author.ID))
	case counting.OutcomeReset:
		if err := b.store.ResetCount(ctx, msg.GuildID); err != nil {
			b.logger.Error("count reset failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
		}
		_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, "❌")
		b.announceCountBreak(msg, result)
	case counting.OutcomeAccept:
		accepted, err := b.store.AcceptCount(ctx, msg.GuildID, state.Count, result.Number, msg.Author.ID)
		if err != nil {
			b.logger.Error("count write failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
			return
		}
		if !accepted {
			// Lost the conditional update: someone else advanced first, so
			// this number is wrong after all.
			if err := b.store.ResetCount(ctx, msg.GuildID); err != nil {
				b.logger.Error("count reset failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
			}
			_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, "❌")
			b.announceCountBreak(msg, result)
			return
		}
		_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, "✅")
	case counting.OutcomeVictory:
		accepted, err := b.store.AcceptCount(ctx, msg.GuildID, state.Count, result.Number, msg.Author.ID)
		if err != nil {
			b.logger.Error("count write failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
			return
		}
		if !accepted {
			if err := b.store.ResetCount(ctx, msg.GuildID); err != nil {
				b.logger.Error("count reset failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
			}
			_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, "❌")
			b.announceCountBreak(msg, result)
			return
		}
		_ = session.MessageReactionAdd(msg.ChannelID, msg.ID, "✅")
		_, _ = session.ChannelMessageSend(msg.ChannelID, fmt.Sprintf(
			"🎉 <@%s> reached **%d**! The count starts over at 1.", msg.Author.ID, result.Number))
		if err := b.store.ResetCount(ctx, msg.GuildID); err != nil {
			b.logger.Error("count reset failed", zap.String("guild_id", msg.GuildID), zap.Error(err))
		}
	}
}

func (b *Bot) announceCountBreak(msg *discordgo.MessageCreate, result counting.Result) {
	_, _ = b.session.ChannelMessageSend(msg.ChannelID, fmt.Sprintf(
		"<@%s> broke the count at **%d**! The next number was **%d**. Back to 1.",
		msg.Author.ID, result.Number, result.Expected))
}

// handleFilteredMessage runs the removal pipeline; each step is independently
// fault-tolerant so a failed delete still warns and records.
func (b *Bot) handleFilteredMessage(ctx context.Context, session *discordgo.Session, msg *discordgo.MessageCreate, cfg storage.GuildConfig, term string) {
	if err := session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		b.logger.Warn("filtered message delete failed",
			zap.String("guild_id", msg.GuildID),
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	b.sendTransient(msg.ChannelID, fmt.Sprintf("<@%s>, that language isn't allowed here.", msg.Author.ID))

	warning := storage.Warning{
		GuildID:     msg.GuildID,
		UserID:      msg.Author.ID,
		ModeratorID: storage.SystemActorID,
		Reason:      "Use of filtered language",
		CreatedAt:   time.Now(),
	}
	if err := b.store.AddWarning(ctx, warning); err != nil {
		b.logger.Error("auto warning not recorded",
			zap.String("guild_id", msg.GuildID),
			zap.String("user_id", msg.Author.ID),
			zap.Error(err))
	}

	notice := fmt.Sprintf("Your message in <#%s> was removed for filtered language. A warning has been recorded.", msg.ChannelID)
	if dm, err := session.UserChannelCreate(msg.Author.ID); err == nil {
		if _, err := session.ChannelMessageSend(dm.ID, notice); err != nil {
			b.sendTransient(msg.ChannelID, fmt.Sprintf("<@%s> a warning has been recorded.", msg.Author.ID))
		}
	} else {
		b.sendTransient(msg.ChannelID, fmt.Sprintf("<@%s> a warning has been recorded.", msg.Author.ID))
	}

	if cfg.LogsChannelID != "" {
		_, _ = session.ChannelMessageSendEmbed(cfg.LogsChannelID, &discordgo.MessageEmbed{
			Title:       "Message Filtered",
			Description: fmt.Sprintf("Removed a message from <@%s> in <#%s> (matched `%s`).", msg.Author.ID, msg.ChannelID, term),
			Color:       colorWarn,
		})
	}
}
