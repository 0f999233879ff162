package bot

import (
	"context"

	"frostmod/internal/storage"
)

// configStore is the slice of the database a configuration write needs.
type configStore interface {
	GetGuildConfig(ctx context.Context, guildID string, defaults storage.GuildConfig) (storage.GuildConfig, error)
	UpsertGuildConfig(ctx context.Context, cfg storage.GuildConfig) error
}

// updateGuildConfig applies one setting change as read-mutate-upsert. A failed
// read aborts before any write: upserting mutated defaults over a row that
// could not be read would wipe the guild's other settings.
func updateGuildConfig(ctx context.Context, store configStore, guildID string, defaults storage.GuildConfig, mutate func(*storage.GuildConfig)) (storage.GuildConfig, error) {
	cfg, err := store.GetGuildConfig(ctx, guildID, defaults)
	if err != nil {
		return storage.GuildConfig{}, err
	}
	mutate(&cfg)
	if err := store.UpsertGuildConfig(ctx, cfg); err != nil {
		return storage.GuildConfig{}, err
	}
	return cfg, nil
}
