package utils

import "testing"

func TestRenderMemberTemplate(t *testing.T) {
	got := RenderMemberTemplate("Welcome {user}! You are member #{membercount}.", "123", 42)
	want := "Welcome <@123>! You are member #42."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderMemberTemplateNoPlaceholders(t *testing.T) {
	got := RenderMemberTemplate("plain text", "123", 1)
	if got != "plain text" {
		t.Fatalf("got %q", got)
	}
}
