package bot

import "github.com/bwmarrin/discordgo"

func channelOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        name,
		Description: description,
		Required:    true,
		ChannelTypes: []discordgo.ChannelType{
			discordgo.ChannelTypeGuildText,
		},
	}
}

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func (b *Bot) commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		// Configuration
		{
			Name:        "welcome",
			Description: "Set the welcome channel",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel for welcome messages")},
		},
		{
			Name:        "wmessage",
			Description: "Set the welcome message ({user} and {membercount} are expanded)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Welcome message template",
					Required:    true,
				},
			},
		},
		{
			Name:        "joinrole",
			Description: "Set the role assigned to new members",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role for new members",
					Required:    true,
				},
			},
		},
		{
			Name:        "logschannel",
			Description: "Set the server logs channel",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel for server logs")},
		},
		{
			Name:        "lchannel",
			Description: "Set the leave announcements channel",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel for leave announcements")},
		},
		{
			Name:        "leavemessage",
			Description: "Set the leave message ({user} and {membercount} are expanded)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Leave message template",
					Required:    true,
				},
			},
		},
		{
			Name:        "bdaychannel",
			Description: "Set the birthday announcements channel",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel for birthday announcements")},
		},
		{
			Name:        "ticketchannel",
			Description: "Set the channel where ticket instructions live",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel for ticket instructions")},
		},
		{
			Name:        "helpchannel",
			Description: "Set the help channel",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel for help requests")},
		},
		{
			Name:        "mrole",
			Description: "Set the moderator role",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionRole,
					Name:        "role",
					Description: "Role granted moderation commands",
					Required:    true,
				},
			},
		},
		{
			Name:        "filter",
			Description: "Set the content filter level",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "level",
					Description: "none, light, moderate, or strict",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "none", Value: "none"},
						{Name: "light", Value: "light"},
						{Name: "moderate", Value: "moderate"},
						{Name: "strict", Value: "strict"},
					},
				},
			},
		},
		{
			Name:        "countingchannel",
			Description: "Set the counting game channel",
			Options:     []*discordgo.ApplicationCommandOption{channelOption("channel", "Channel for the counting game")},
		},
		{
			Name:        "maxcount",
			Description: "Set the counting game target (1-1000)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "value",
					Description: "Number that wins the round",
					Required:    true,
				},
			},
		},
		{
			Name:        "updatecount",
			Description: "Set the current count directly",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "value",
					Description: "New current count",
					Required:    true,
				},
			},
		},
		// Moderation
		{
			Name:        "warn",
			Description: "Warn a member",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Member to warn", true),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the warning",
					Required:    true,
				},
			},
		},
		{
			Name:        "warns",
			Description: "List a member's warnings",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member to look up", true)},
		},
		{
			Name:        "delwarns",
			Description: "Delete all of a member's warnings",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member whose warnings are removed", true)},
		},
		{
			Name:        "purge",
			Description: "Delete recent messages in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "How many messages to delete (1-100)",
					Required:    true,
				},
			},
		},
		{
			Name:        "purgeuser",
			Description: "Delete a member's recent messages in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("user", "Member whose messages are deleted", true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "How many of their messages to delete (1-100)",
					Required:    true,
				},
			},
		},
		// Birthdays
		{
			Name:        "setbirthday",
			Description: "Save your birthday",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "month",
					Description: "Month (1-12)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "day",
					Description: "Day (1-31)",
					Required:    true,
				},
			},
		},
		{
			Name:        "delbday",
			Description: "Delete a saved birthday",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member whose birthday is removed (admins only)", false)},
		},
		{
			Name:        "testbirthdays",
			Description: "Run today's birthday announcements now",
		},
		// Utility
		{
			Name:        "status",
			Description: "Show bot status",
		},
		{
			Name:        "avatar",
			Description: "Show a member's avatar",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member whose avatar to show", false)},
		},
		{
			Name:        "help",
			Description: "List available commands",
		},
		{
			Name:        "support",
			Description: "Open a support ticket",
		},
		{
			Name:        "userinfo",
			Description: "Show details about a member",
			Options:     []*discordgo.ApplicationCommandOption{userOption("user", "Member to inspect", false)},
		},
		{
			Name:        "serverinfo",
			Description: "Show details about this server",
		},
		// Fun
		{
			Name:        "twerkz",
			Description: "Dance!",
		},
		{
			Name:        "8ball",
			Description: "Ask the magic 8-ball",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "Your question",
					Required:    true,
				},
			},
		},
		{
			Name:        "coinflip",
			Description: "Flip a coin",
		},
		{
			Name:        "roll",
			Description: "Roll a die",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "sides",
					Description: "Number of sides (default 6)",
					Required:    false,
				},
			},
		},
		{
			Name:        "joke",
			Description: "Tell a joke",
		},
		{
			Name:        "utilities",
			Description: "List utility commands",
		},
	}
}

// registerCommands syncs the command set: guild-scoped when a test guild is
// configured (instant propagation), global otherwise. Stale commands under the
// chosen scope are removed.
func (b *Bot) registerCommands() error {
	commands := b.commandDefinitions()
	appID := b.session.State.User.ID
	scope := b.cfg.TestGuildID

	existing, err := b.session.ApplicationCommands(appID, scope)
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, scope, cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, scope, current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, scope, cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, scope, cmd.ID)
	}

	return nil
}
