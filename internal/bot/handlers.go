package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"frostmod/internal/authz"
	"frostmod/internal/counting"
	"frostmod/internal/storage"
	"frostmod/internal/tickets"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx := context.Background()

	if interaction.Type == discordgo.InteractionMessageComponent {
		if interaction.MessageComponentData().CustomID == "ticket_close" {
			b.handleTicketClose(ctx, session, interaction)
		}
		return
	}

	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if interaction.GuildID == "" {
		b.respond(session, interaction, "This command only works in a server.", true)
		return
	}

	data := interaction.ApplicationCommandData()
	opts := optionMap(data.Options)

	switch data.Name {
	case "welcome", "wmessage", "joinrole", "logschannel", "lchannel", "leavemessage",
		"bdaychannel", "ticketchannel", "helpchannel", "mrole", "filter", "countingchannel":
		b.handleConfigCommand(ctx, session, interaction, data.Name, opts)
	case "maxcount":
		b.handleMaxCount(ctx, session, interaction, opts)
	case "updatecount":
		b.handleUpdateCount(ctx, session, interaction, opts)
	case "warn":
		b.handleWarn(ctx, session, interaction, opts)
	case "warns":
		b.handleWarns(ctx, session, interaction, opts)
	case "delwarns":
		b.handleDelWarns(ctx, session, interaction, opts)
	case "purge":
		b.handlePurge(ctx, session, interaction, opts, "")
	case "purgeuser":
		user := opts["user"].UserValue(session)
		if user == nil {
			b.respond(session, interaction, "Couldn't resolve that member.", true)
			return
		}
		b.handlePurge(ctx, session, interaction, opts, user.ID)
	case "setbirthday":
		b.handleSetBirthday(ctx, session, interaction, opts)
	case "delbday":
		b.handleDelBirthday(ctx, session, interaction, opts)
	case "testbirthdays":
		b.handleTestBirthdays(ctx, session, interaction)
	case "status":
		b.handleStatus(session, interaction)
	case "avatar":
		b.handleAvatar(session, interaction, opts)
	case "help":
		b.handleHelp(session, interaction)
	case "support":
		b.handleSupport(ctx, session, interaction)
	case "userinfo":
		b.handleUserInfo(session, interaction, opts)
	case "serverinfo":
		b.handleServerInfo(session, interaction)
	case "twerkz":
		b.respond(session, interaction, "💃🕺💃🕺 *twerks aggressively* 🕺💃🕺💃", false)
	case "8ball":
		b.handleEightBall(session, interaction, opts)
	case "coinflip":
		if rand.Intn(2) == 0 {
			b.respond(session, interaction, "🪙 Heads!", false)
		} else {
			b.respond(session, interaction, "🪙 Tails!", false)
		}
	case "roll":
		b.handleRoll(session, interaction, opts)
	case "joke":
		b.respond(session, interaction, jokes[rand.Intn(len(jokes))], false)
	case "utilities":
		b.handleUtilities(session, interaction)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	result := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		result[option.Name] = option
	}
	return result
}

func interactionUser(interaction *discordgo.InteractionCreate) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

// authorize resolves the guild and checks the capability; a denial is answered
// with an ephemeral rejection and no state is touched.
func (b *Bot) authorize(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, capability authz.Capability) bool {
	guild := b.guildFromInteraction(session, interaction)
	cfg := b.guildConfig(ctx, interaction.GuildID)
	if b.authorizer.Authorize(interaction.Member, guild, cfg.ModRoleID, capability) {
		return true
	}
	b.respond(session, interaction, "You don't have permission to use this command.", true)
	return false
}

func (b *Bot) handleConfigCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, name string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.authorize(ctx, session, interaction, authz.CapAdmin) {
		return
	}

	var confirmation string
	var mutate func(*storage.GuildConfig)

	switch name {
	case "welcome", "logschannel", "lchannel", "bdaychannel", "ticketchannel", "helpchannel", "countingchannel":
		channel := opts["channel"].ChannelValue(session)
		if channel == nil {
			b.respond(session, interaction, "Couldn't resolve that channel.", true)
			return
		}
		switch name {
		case "welcome":
			mutate = func(cfg *storage.GuildConfig) { cfg.WelcomeChannelID = channel.ID }
			confirmation = fmt.Sprintf("Welcome channel set to <#%s>.", channel.ID)
		case "logschannel":
			mutate = func(cfg *storage.GuildConfig) { cfg.LogsChannelID = channel.ID }
			confirmation = fmt.Sprintf("Logs channel set to <#%s>.", channel.ID)
		case "lchannel":
			mutate = func(cfg *storage.GuildConfig) { cfg.LeaveChannelID = channel.ID }
			confirmation = fmt.Sprintf("Leave channel set to <#%s>.", channel.ID)
		case "bdaychannel":
			mutate = func(cfg *storage.GuildConfig) { cfg.BirthdayChannelID = channel.ID }
			confirmation = fmt.Sprintf("Birthday channel set to <#%s>.", channel.ID)
		case "ticketchannel":
			mutate = func(cfg *storage.GuildConfig) { cfg.TicketChannelID = channel.ID }
			confirmation = fmt.Sprintf("Ticket channel set to <#%s>.", channel.ID)
		case "helpchannel":
			mutate = func(cfg *storage.GuildConfig) { cfg.HelpChannelID = channel.ID }
			confirmation = fmt.Sprintf("Help channel set to <#%s>.", channel.ID)
		case "countingchannel":
			mutate = func(cfg *storage.GuildConfig) { cfg.CountingChannelID = channel.ID }
			confirmation = fmt.Sprintf("Counting channel set to <#%s>.", channel.ID)
		}
	case "wmessage":
		message := opts["message"].StringValue()
		mutate = func(cfg *storage.GuildConfig) { cfg.WelcomeMessage = message }
		confirmation = "Welcome message updated."
	case "leavemessage":
		message := opts["message"].StringValue()
		mutate = func(cfg *storage.GuildConfig) { cfg.LeaveMessage = message }
		confirmation = "Leave message updated."
	case "joinrole":
		role := opts["role"].RoleValue(session, interaction.GuildID)
		if role == nil {
			b.respond(session, interaction, "Couldn't resolve that role.", true)
			return
		}
		mutate = func(cfg *storage.GuildConfig) { cfg.JoinRoleID = role.ID }
		confirmation = fmt.Sprintf("New members will receive <@&%s>.", role.ID)
	case "mrole":
		role := opts["role"].RoleValue(session, interaction.GuildID)
		if role == nil {
			b.respond(session, interaction, "Couldn't resolve that role.", true)
			return
		}
		mutate = func(cfg *storage.GuildConfig) { cfg.ModRoleID = role.ID }
		confirmation = fmt.Sprintf("Moderator role set to <@&%s>.", role.ID)
	case "filter":
		level := opts["level"].StringValue()
		mutate = func(cfg *storage.GuildConfig) { cfg.FilterLevel = level }
		confirmation = fmt.Sprintf("Content filter set to **%s**.", level)
	}
	if mutate == nil {
		return
	}

	guildName := ""
	if guild := b.guildFromInteraction(session, interaction); guild != nil {
		guildName = guild.Name
	}
	defaults := storage.GuildConfig{
		GuildID:     interaction.GuildID,
		FilterLevel: b.cfg.Moderation.DefaultFilterLevel,
	}
	_, err := updateGuildConfig(ctx, b.store, interaction.GuildID, defaults, func(cfg *storage.GuildConfig) {
		mutate(cfg)
		if guildName != "" {
			cfg.GuildName = guildName
		}
	})
	if err != nil {
		b.logger.Error("guild config write failed",
			zap.String("guild_id", interaction.GuildID),
			zap.String("command", name),
			zap.Error(err))
		b.respond(session, interaction, "Something went wrong saving that setting.", true)
		return
	}
	b.respond(session, interaction, confirmation, true)
}

func (b *Bot) handleMaxCount(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.authorize(ctx, session, interaction, authz.CapAdmin) {
		return
	}
	value := int(opts["value"].IntValue())
	if !counting.ValidMaxCount(value) {
		b.respond(session, interaction, fmt.Sprintf("The target must be between %d and %d.", counting.MinMaxCount, counting.MaxMaxCount), true)
		return
	}
	if err := b.store.SetMaxCount(ctx, interaction.GuildID, value); err != nil {
		b.logger.Error("max count write failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong saving that setting.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Counting target set to **%d**.", value), true)
}

func (b *Bot) handleUpdateCount(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.authorize(ctx, session, interaction, authz.CapAdmin) {
		return
	}
	value := int(opts["value"].IntValue())
	if value < 0 {
		b.respond(session, interaction, "The count can't be negative.", true)
		return
	}
	if err := b.store.SetCurrentCount(ctx, interaction.GuildID, value); err != nil {
		b.logger.Error("count override failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong saving that setting.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Current count set to **%d**. The next number is **%d**.", value, value+1), true)
}

func (b *Bot) handleWarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.authorize(ctx, session, interaction, authz.CapModerate) {
		return
	}
	target := opts["user"].UserValue(session)
	if target == nil {
		b.respond(session, interaction, "Couldn't resolve that member.", true)
		return
	}
	reason := opts["reason"].StringValue()
	moderator := interactionUser(interaction)

	warning := storage.Warning{
		GuildID:     interaction.GuildID,
		UserID:      target.ID,
		ModeratorID: moderator.ID,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
	if err := b.store.AddWarning(ctx, warning); err != nil {
		b.logger.Error("warning write failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong recording the warning.", true)
		return
	}

	b.respondEmbed(session, interaction, &discordgo.MessageEmbed{
		Title:       "Member Warned",
		Description: fmt.Sprintf("<@%s> has been warned by <@%s>.\n**Reason:** %s", target.ID, moderator.ID, reason),
		Color:       colorWarn,
	}, false)

	if dm, err := session.UserChannelCreate(target.ID); err == nil {
		_, _ = session.ChannelMessageSend(dm.ID, fmt.Sprintf("You received a warning in the server.\n**Reason:** %s", reason))
	}
}

func (b *Bot) handleWarns(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.authorize(ctx, session, interaction, authz.CapModerate) {
		return
	}
	target := opts["user"].UserValue(session)
	if target == nil {
		b.respond(session, interaction, "Couldn't resolve that member.", true)
		return
	}
	warnings, err := b.store.ListWarnings(ctx, interaction.GuildID, target.ID)
	if err != nil {
		b.logger.Error("warnings lookup failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong looking up warnings.", true)
		return
	}
	if len(warnings) == 0 {
		b.respond(session, interaction, fmt.Sprintf("<@%s> has no warnings.", target.ID), true)
		return
	}

	var lines strings.Builder
	for i, warning := range warnings {
		if i >= 10 {
			lines.WriteString(fmt.Sprintf("… and %d more.\n", len(warnings)-i))
			break
		}
		by := warning.ModeratorID
		if by != storage.SystemActorID {
			by = "<@" + by + ">"
		}
		lines.WriteString(fmt.Sprintf("`%s` by %s — %s\n", warning.CreatedAt.Format("2006-01-02"), by, warning.Reason))
	}
	b.respondEmbed(session, interaction, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Warnings for %s (%d)", target.Username, len(warnings)),
		Description: lines.String(),
		Color:       colorWarn,
	}, true)
}

func (b *Bot) handleDelWarns(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.authorize(ctx, session, interaction, authz.CapAdmin) {
		return
	}
	target := opts["user"].UserValue(session)
	if target == nil {
		b.respond(session, interaction, "Couldn't resolve that member.", true)
		return
	}
	deleted, err := b.store.DeleteWarnings(ctx, interaction.GuildID, target.ID)
	if err != nil {
		b.logger.Error("warning delete failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong deleting warnings.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Removed %d warning(s) for <@%s>.", deleted, target.ID), true)
}

// handlePurge acknowledges first, then deletes: bulk delete when possible,
// falling back to one-by-one with a fixed delay, sleeping out rate limits.
func (b *Bot) handlePurge(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, onlyUserID string) {
	if !b.authorize(ctx, session, interaction, authz.CapModerate) {
		return
	}
	amount := int(opts["amount"].IntValue())
	if amount < 1 || amount > 100 {
		b.respond(session, interaction, "The amount must be between 1 and 100.", true)
		return
	}

	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Warn("purge ack failed", zap.Error(err))
		return
	}

	fetchLimit := amount
	if onlyUserID != "" {
		fetchLimit = 100
	}
	messages, err := session.ChannelMessages(interaction.ChannelID, fetchLimit, "", "", "")
	if err != nil {
		b.followUp(session, interaction, "Couldn't fetch messages to delete.")
		return
	}

	var ids []string
	for _, message := range messages {
		if onlyUserID != "" && (message.Author == nil || message.Author.ID != onlyUserID) {
			continue
		}
		ids = append(ids, message.ID)
		if len(ids) >= amount {
			break
		}
	}
	if len(ids) == 0 {
		b.followUp(session, interaction, "Nothing to delete.")
		return
	}

	deleted := len(ids)
	if err := session.ChannelMessagesBulkDelete(interaction.ChannelID, ids); err != nil {
		deleted = b.deleteOneByOne(session, interaction.ChannelID, ids)
	}

	b.followUp(session, interaction, fmt.Sprintf("Deleted %d message(s).", deleted))
	b.logToGuildChannel(ctx, interaction.GuildID, &discordgo.MessageEmbed{
		Title:       "Messages Purged",
		Description: fmt.Sprintf("<@%s> deleted %d message(s) in <#%s>.", interactionUser(interaction).ID, deleted, interaction.ChannelID),
		Color:       colorAction,
	})
}

func (b *Bot) deleteOneByOne(session *discordgo.Session, channelID string, ids []string) int {
	delay := time.Duration(b.cfg.Moderation.PurgeDelayMillis) * time.Millisecond
	deleted := 0
	for _, id := range ids {
		err := session.ChannelMessageDelete(channelID, id)
		var rateLimited *discordgo.RateLimitError
		if errors.As(err, &rateLimited) {
			time.Sleep(rateLimited.RetryAfter)
			err = session.ChannelMessageDelete(channelID, id)
		}
		if err != nil {
			b.logger.Debug("purge delete failed", zap.String("message_id", id), zap.Error(err))
			continue
		}
		deleted++
		time.Sleep(delay)
	}
	return deleted
}

func (b *Bot) followUp(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string) {
	_, _ = session.FollowupMessageCreate(interaction.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) handleSetBirthday(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	month := int(opts["month"].IntValue())
	day := int(opts["day"].IntValue())
	if !validCalendarDay(month, day) {
		b.respond(session, interaction, "That's not a valid calendar date.", true)
		return
	}

	user := interactionUser(interaction)
	birthday := storage.Birthday{GuildID: interaction.GuildID, UserID: user.ID, Month: month, Day: day}
	if err := b.store.UpsertBirthday(ctx, birthday); err != nil {
		b.logger.Error("birthday write failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong saving your birthday.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Birthday saved: **%s %d**. 🎂", time.Month(month), day), true)
}

// validCalendarDay accepts Feb 29 since the stored date recurs yearly.
func validCalendarDay(month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	date := time.Date(2024, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return int(date.Month()) == month && date.Day() == day
}

func (b *Bot) handleDelBirthday(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	invoker := interactionUser(interaction)
	targetID := invoker.ID
	if option, ok := opts["user"]; ok {
		if target := option.UserValue(session); target != nil && target.ID != invoker.ID {
			if !b.authorize(ctx, session, interaction, authz.CapAdmin) {
				return
			}
			targetID = target.ID
		}
	}

	found, err := b.store.DeleteBirthday(ctx, interaction.GuildID, targetID)
	if err != nil {
		b.logger.Error("birthday delete failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong deleting that birthday.", true)
		return
	}
	if !found {
		b.respond(session, interaction, "No birthday was saved for that member.", true)
		return
	}
	b.respond(session, interaction, "Birthday removed.", true)
}

func (b *Bot) handleTestBirthdays(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if !b.authorize(ctx, session, interaction, authz.CapAdmin) {
		return
	}
	count := b.sweepGuild(ctx, interaction.GuildID)
	if count == 0 {
		b.respond(session, interaction, "No birthdays today.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Announced %d birthday(s).", count), true)
}

func (b *Bot) handleStatus(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	uptime := time.Since(b.startedAt).Round(time.Second)
	latency := session.HeartbeatLatency().Round(time.Millisecond)
	b.respondEmbed(session, interaction, &discordgo.MessageEmbed{
		Title: "Bot Status",
		Color: colorAction,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Uptime", Value: uptime.String(), Inline: true},
			{Name: "Latency", Value: latency.String(), Inline: true},
			{Name: "Servers", Value: fmt.Sprintf("%d", len(session.State.Guilds)), Inline: true},
		},
	}, false)
}

func (b *Bot) handleAvatar(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	target := interactionUser(interaction)
	if option, ok := opts["user"]; ok {
		if user := option.UserValue(session); user != nil {
			target = user
		}
	}
	b.respondEmbed(session, interaction, &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s's avatar", target.Username),
		Image: &discordgo.MessageEmbedImage{URL: target.AvatarURL("512")},
		Color: colorAction,
	}, false)
}

func (b *Bot) handleHelp(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.respondEmbed(session, interaction, &discordgo.MessageEmbed{
		Title:       "Commands",
		Description: "Configuration commands need the Administrator permission; moderation commands need the moderator role.",
		Color:       colorAction,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Configuration",
				Value: "`/welcome` `/wmessage` `/joinrole` `/logschannel` `/lchannel` `/leavemessage` `/bdaychannel` `/ticketchannel` `/helpchannel` `/mrole` `/filter` `/countingchannel` `/maxcount` `/updatecount`",
			},
			{
				Name:  "Moderation",
				Value: "`/warn` `/warns` `/delwarns` `/purge` `/purgeuser`",
			},
			{
				Name:  "Birthdays",
				Value: "`/setbirthday` `/delbday` `/testbirthdays`",
			},
			{
				Name:  "Utility",
				Value: "`/status` `/avatar` `/userinfo` `/serverinfo` `/support` `/utilities`",
			},
			{
				Name:  "Fun",
				Value: "`/twerkz` `/8ball` `/coinflip` `/roll` `/joke`",
			},
		},
	}, true)
}

func (b *Bot) handleSupport(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	user := interactionUser(interaction)
	cfg := b.guildConfig(ctx, interaction.GuildID)

	ticket, err := b.tickets.Open(ctx, interaction.GuildID, user.ID, cfg.ModRoleID, session.State.User.ID)
	if err != nil {
		if errors.Is(err, tickets.ErrTicketExists) {
			b.respond(session, interaction, "You already have an open ticket.", true)
			return
		}
		b.logger.Error("ticket open failed",
			zap.String("guild_id", interaction.GuildID),
			zap.String("user_id", user.ID),
			zap.Error(err))
		b.respond(session, interaction, "Something went wrong opening your ticket.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("Your ticket is ready: <#%s>", ticket.ChannelID), true)
}

func (b *Bot) handleTicketClose(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		return
	}
	user := interactionUser(interaction)
	if user == nil {
		return
	}

	ticket, found, err := b.store.GetTicketByChannel(ctx, interaction.ChannelID)
	if err != nil {
		b.logger.Error("ticket lookup failed", zap.String("channel_id", interaction.ChannelID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong looking up this ticket.", true)
		return
	}
	if !found {
		b.respond(session, interaction, "This isn't a ticket channel.", true)
		return
	}

	cfg := b.guildConfig(ctx, interaction.GuildID)
	guild := b.guildFromInteraction(session, interaction)
	isModerator := b.authorizer.Authorize(interaction.Member, guild, cfg.ModRoleID, authz.CapModerate)
	if !tickets.CanClose(ticket, user.ID, isModerator) {
		b.respond(session, interaction, "Only the ticket creator or staff can close this ticket.", true)
		return
	}

	if err := b.tickets.Close(ctx, ticket, user.ID); err != nil {
		if errors.Is(err, tickets.ErrAlreadyClosed) {
			b.respond(session, interaction, "This ticket is already closed.", true)
			return
		}
		b.logger.Error("ticket close failed", zap.Int64("ticket_id", ticket.ID), zap.Error(err))
		b.respond(session, interaction, "Something went wrong closing the ticket.", true)
		return
	}
	b.respond(session, interaction, "Ticket closed. The transcript has been saved.", true)
}

func (b *Bot) handleUserInfo(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	target := interactionUser(interaction)
	if option, ok := opts["user"]; ok {
		if user := option.UserValue(session); user != nil {
			target = user
		}
	}

	created, _ := discordgo.SnowflakeTimestamp(target.ID)
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: target.ID, Inline: true},
		{Name: "Created", Value: created.Format("2006-01-02"), Inline: true},
	}
	if member, err := session.GuildMember(interaction.GuildID, target.ID); err == nil {
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: "Joined", Value: member.JoinedAt.Format("2006-01-02"), Inline: true},
			&discordgo.MessageEmbedField{Name: "Roles", Value: fmt.Sprintf("%d", len(member.Roles)), Inline: true},
		)
	}
	b.respondEmbed(session, interaction, &discordgo.MessageEmbed{
		Title:     target.Username,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("256")},
		Color:     colorAction,
		Fields:    fields,
	}, false)
}

func (b *Bot) handleServerInfo(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	guild := b.guildFromInteraction(session, interaction)
	if guild == nil {
		b.respond(session, interaction, "Couldn't load server details.", true)
		return
	}
	created, _ := discordgo.SnowflakeTimestamp(guild.ID)
	b.respondEmbed(session, interaction, &discordgo.MessageEmbed{
		Title: guild.Name,
		Color: colorAction,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Members", Value: fmt.Sprintf("%d", guild.MemberCount), Inline: true},
			{Name: "Owner", Value: "<@" + guild.OwnerID + ">", Inline: true},
			{Name: "Created", Value: created.Format("2006-01-02"), Inline: true},
			{Name: "Channels", Value: fmt.Sprintf("%d", len(guild.Channels)), Inline: true},
			{Name: "Roles", Value: fmt.Sprintf("%d", len(guild.Roles)), Inline: true},
		},
	}, false)
}

func (b *Bot) handleEightBall(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	question := opts["question"].StringValue()
	answer := eightBallAnswers[rand.Intn(len(eightBallAnswers))]
	b.respond(session, interaction, fmt.Sprintf("🎱 *%s*\n%s", question, answer), false)
}

func (b *Bot) handleRoll(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	sides := 6
	if option, ok := opts["sides"]; ok {
		sides = int(option.IntValue())
	}
	if sides < 2 || sides > 1000 {
		b.respond(session, interaction, "Pick between 2 and 1000 sides.", true)
		return
	}
	b.respond(session, interaction, fmt.Sprintf("🎲 You rolled a **%d** (d%d).", rand.Intn(sides)+1, sides), false)
}

func (b *Bot) handleUtilities(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.respondEmbed(session, interaction, &discordgo.MessageEmbed{
		Title: "Utilities",
		Color: colorAction,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "/status", Value: "Bot uptime, latency and server count."},
			{Name: "/avatar", Value: "Show a member's avatar."},
			{Name: "/userinfo", Value: "Account and membership details."},
			{Name: "/serverinfo", Value: "Server details."},
			{Name: "/support", Value: "Open a private support ticket."},
		},
	}, true)
}

var eightBallAnswers = []string{
	"It is certain.",
	"Without a doubt.",
	"Yes, definitely.",
	"Most likely.",
	"Signs point to yes.",
	"Reply hazy, try again.",
	"Ask again later.",
	"Better not tell you now.",
	"Don't count on it.",
	"My reply is no.",
	"Outlook not so good.",
	"Very doubtful.",
}

var jokes = []string{
	"Why do programmers prefer dark mode? Because light attracts bugs.",
	"I told my computer I needed a break, and it said 'no problem, I'll go to sleep.'",
	"Why did the scarecrow win an award? He was outstanding in his field.",
	"There are 10 types of people: those who understand binary and those who don't.",
	"Why don't skeletons fight each other? They don't have the guts.",
	"I would tell you a UDP joke, but you might not get it.",
}
