package utils

import (
	"strconv"
	"strings"
)

// RenderMemberTemplate expands the {user} and {membercount} placeholders used
// by welcome and leave messages.
func RenderMemberTemplate(template, userID string, memberCount int) string {
	out := strings.ReplaceAll(template, "{user}", "<@"+userID+">")
	out = strings.ReplaceAll(out, "{membercount}", strconv.Itoa(memberCount))
	return out
}
