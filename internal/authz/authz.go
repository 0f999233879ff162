package authz

import "github.com/bwmarrin/discordgo"

// Capability is the permission a command requires.
type Capability int

const (
	// CapAdmin gates configuration writes and destructive bulk actions.
	CapAdmin Capability = iota
	// CapModerate gates warn/purge/ticket-close; the configured moderator
	// role qualifies in addition to everything CapAdmin accepts.
	CapModerate
)

// Authorizer is the single permission policy: owner id short-circuits, then
// the administrator bit resolved through guild roles, then (for CapModerate)
// the guild's configured moderator role.
type Authorizer struct {
	ownerID string
}

func New(ownerID string) *Authorizer {
	return &Authorizer{ownerID: ownerID}
}

func (a *Authorizer) Authorize(member *discordgo.Member, guild *discordgo.Guild, modRoleID string, capability Capability) bool {
	if member == nil || member.User == nil {
		return false
	}
	if a.ownerID != "" && member.User.ID == a.ownerID {
		return true
	}
	if guild != nil && guild.OwnerID == member.User.ID {
		return true
	}
	if memberHasAdmin(guild, member) {
		return true
	}
	if capability == CapModerate && modRoleID != "" {
		for _, roleID := range member.Roles {
			if roleID == modRoleID {
				return true
			}
		}
	}
	return false
}

func memberHasAdmin(guild *discordgo.Guild, member *discordgo.Member) bool {
	if guild == nil || member == nil {
		return false
	}
	perms := int64(0)
	for _, role := range guild.Roles {
		if role.ID == guild.ID {
			perms |= role.Permissions
			break
		}
	}
	roleMap := make(map[string]*discordgo.Role, len(guild.Roles))
	for _, role := range guild.Roles {
		roleMap[role.ID] = role
	}
	for _, roleID := range member.Roles {
		if role := roleMap[roleID]; role != nil {
			perms |= role.Permissions
		}
	}
	return perms&discordgo.PermissionAdministrator != 0
}
