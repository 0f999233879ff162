package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"frostmod/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	pool *pgxpool.Pool
}

type GuildConfig struct {
	GuildID           string
	GuildName         string
	WelcomeChannelID  string
	WelcomeMessage    string
	LeaveChannelID    string
	LeaveMessage      string
	LogsChannelID     string
	BirthdayChannelID string
	TicketChannelID   string
	CountingChannelID string
	HelpChannelID     string
	JoinRoleID        string
	ModRoleID         string
	FilterLevel       string
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.pool.Exec(ctx, string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

func (s *Store) GetGuildConfig(ctx context.Context, guildID string, defaults GuildConfig) (GuildConfig, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT guild_name, welcome_channel_id, welcome_message, leave_channel_id,
		leave_message, logs_channel_id, birthday_channel_id, ticket_channel_id,
		counting_channel_id, help_channel_id, join_role_id, mod_role_id, filter_level
		FROM guild_configs WHERE guild_id = $1`, guildID)

	result := defaults
	result.GuildID = guildID

	err := row.Scan(
		&result.GuildName,
		&result.WelcomeChannelID,
		&result.WelcomeMessage,
		&result.LeaveChannelID,
		&result.LeaveMessage,
		&result.LogsChannelID,
		&result.BirthdayChannelID,
		&result.TicketChannelID,
		&result.CountingChannelID,
		&result.HelpChannelID,
		&result.JoinRoleID,
		&result.ModRoleID,
		&result.FilterLevel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, nil
		}
		return GuildConfig{}, err
	}
	if result.FilterLevel == "" {
		result.FilterLevel = defaults.FilterLevel
	}
	return result, nil
}

func (s *Store) UpsertGuildConfig(ctx context.Context, cfg GuildConfig) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO guild_configs (
			guild_id, guild_name, welcome_channel_id, welcome_message, leave_channel_id,
			leave_message, logs_channel_id, birthday_channel_id, ticket_channel_id,
			counting_channel_id, help_channel_id, join_role_id, mod_role_id, filter_level
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (guild_id) DO UPDATE SET
			guild_name = excluded.guild_name,
			welcome_channel_id = excluded.welcome_channel_id,
			welcome_message = excluded.welcome_message,
			leave_channel_id = excluded.leave_channel_id,
			leave_message = excluded.leave_message,
			logs_channel_id = excluded.logs_channel_id,
			birthday_channel_id = excluded.birthday_channel_id,
			ticket_channel_id = excluded.ticket_channel_id,
			counting_channel_id = excluded.counting_channel_id,
			help_channel_id = excluded.help_channel_id,
			join_role_id = excluded.join_role_id,
			mod_role_id = excluded.mod_role_id,
			filter_level = excluded.filter_level
	`,
		cfg.GuildID,
		cfg.GuildName,
		cfg.WelcomeChannelID,
		cfg.WelcomeMessage,
		cfg.LeaveChannelID,
		cfg.LeaveMessage,
		cfg.LogsChannelID,
		cfg.BirthdayChannelID,
		cfg.TicketChannelID,
		cfg.CountingChannelID,
		cfg.HelpChannelID,
		cfg.JoinRoleID,
		cfg.ModRoleID,
		cfg.FilterLevel,
	)
	return err
}

// TouchGuild records the guild row on first contact without clobbering
// configuration written by commands.
func (s *Store) TouchGuild(ctx context.Context, guildID, guildName string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO guild_configs (guild_id, guild_name) VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET guild_name = excluded.guild_name
	`, guildID, guildName)
	return err
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "already exists")
}
