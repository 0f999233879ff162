package bot

import (
	"context"
	"errors"
	"testing"

	"frostmod/internal/storage"
)

type fakeConfigStore struct {
	rows    map[string]storage.GuildConfig
	readErr error
	upserts int
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{rows: make(map[string]storage.GuildConfig)}
}

func (f *fakeConfigStore) GetGuildConfig(_ context.Context, guildID string, defaults storage.GuildConfig) (storage.GuildConfig, error) {
	if f.readErr != nil {
		return storage.GuildConfig{}, f.readErr
	}
	if row, ok := f.rows[guildID]; ok {
		return row, nil
	}
	result := defaults
	result.GuildID = guildID
	return result, nil
}

func (f *fakeConfigStore) UpsertGuildConfig(_ context.Context, cfg storage.GuildConfig) error {
	f.rows[cfg.GuildID] = cfg
	f.upserts++
	return nil
}

func TestConfigUpsertIdempotent(t *testing.T) {
	store := newFakeConfigStore()
	defaults := storage.GuildConfig{GuildID: "g1", FilterLevel: "light"}
	setWelcome := func(cfg *storage.GuildConfig) { cfg.WelcomeChannelID = "c1" }

	for i := 0; i < 2; i++ {
		if _, err := updateGuildConfig(context.Background(), store, "g1", defaults, setWelcome); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	if len(store.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(store.rows))
	}
	if got := store.rows["g1"].WelcomeChannelID; got != "c1" {
		t.Fatalf("expected welcome channel c1, got %q", got)
	}
}

func TestConfigUpdatePreservesOtherFields(t *testing.T) {
	store := newFakeConfigStore()
	store.rows["g1"] = storage.GuildConfig{
		GuildID:       "g1",
		ModRoleID:     "mods",
		LogsChannelID: "logs",
		FilterLevel:   "strict",
	}

	updated, err := updateGuildConfig(context.Background(), store, "g1", storage.GuildConfig{GuildID: "g1", FilterLevel: "light"},
		func(cfg *storage.GuildConfig) { cfg.WelcomeChannelID = "c1" })
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.ModRoleID != "mods" || updated.LogsChannelID != "logs" || updated.FilterLevel != "strict" {
		t.Fatalf("other settings must survive a single-field update, got %+v", updated)
	}
	if updated.WelcomeChannelID != "c1" {
		t.Fatalf("expected welcome channel c1, got %q", updated.WelcomeChannelID)
	}
}

func TestConfigUpdateAbortsOnReadFailure(t *testing.T) {
	store := newFakeConfigStore()
	store.rows["g1"] = storage.GuildConfig{GuildID: "g1", ModRoleID: "mods"}
	store.readErr = errors.New("connection reset")

	_, err := updateGuildConfig(context.Background(), store, "g1", storage.GuildConfig{GuildID: "g1"},
		func(cfg *storage.GuildConfig) { cfg.WelcomeChannelID = "c1" })
	if err == nil {
		t.Fatalf("expected the read failure to surface")
	}
	if store.upserts != 0 {
		t.Fatalf("a failed read must not be followed by a write, got %d upserts", store.upserts)
	}
	if store.rows["g1"].ModRoleID != "mods" {
		t.Fatalf("stored row must be untouched, got %+v", store.rows["g1"])
	}
}
