package authz

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func testGuild() *discordgo.Guild {
	return &discordgo.Guild{
		ID:      "g1",
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "g1", Permissions: 0},
			{ID: "admin-role", Permissions: discordgo.PermissionAdministrator},
			{ID: "mod-role", Permissions: 0},
			{ID: "plain-role", Permissions: 0},
		},
	}
}

func member(userID string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roles}
}

func TestConfiguredOwnerAlwaysAuthorized(t *testing.T) {
	a := New("boss")
	if !a.Authorize(member("boss"), testGuild(), "", CapAdmin) {
		t.Fatalf("configured owner must pass CapAdmin")
	}
}

func TestGuildOwnerAuthorized(t *testing.T) {
	a := New("")
	if !a.Authorize(member("owner"), testGuild(), "", CapAdmin) {
		t.Fatalf("guild owner must pass CapAdmin")
	}
}

func TestAdministratorRoleAuthorized(t *testing.T) {
	a := New("")
	if !a.Authorize(member("u1", "admin-role"), testGuild(), "", CapAdmin) {
		t.Fatalf("administrator bit must pass CapAdmin")
	}
}

func TestModRoleOnlyModerates(t *testing.T) {
	a := New("")
	mod := member("u2", "mod-role")
	if !a.Authorize(mod, testGuild(), "mod-role", CapModerate) {
		t.Fatalf("mod role must pass CapModerate")
	}
	if a.Authorize(mod, testGuild(), "mod-role", CapAdmin) {
		t.Fatalf("mod role must not pass CapAdmin")
	}
}

func TestPlainMemberDenied(t *testing.T) {
	a := New("")
	plain := member("u3", "plain-role")
	if a.Authorize(plain, testGuild(), "mod-role", CapModerate) {
		t.Fatalf("plain member must not moderate")
	}
	if a.Authorize(plain, testGuild(), "", CapAdmin) {
		t.Fatalf("plain member must not administrate")
	}
}

func TestNilMemberDenied(t *testing.T) {
	a := New("boss")
	if a.Authorize(nil, testGuild(), "", CapAdmin) {
		t.Fatalf("nil member must be denied")
	}
}
