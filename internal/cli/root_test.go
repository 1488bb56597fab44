package cli

import (
	"strings"
	"testing"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	defer func() {
		appVersion, appCommit, appDate = origVersion, origCommit, origDate
	}()

	SetVersionInfo("1.2.3", "abc1234", "2026-01-19")

	if appVersion != "1.2.3" {
		t.Errorf("appVersion = %q, want 1.2.3", appVersion)
	}
	if appCommit != "abc1234" {
		t.Errorf("appCommit = %q, want abc1234", appCommit)
	}
	if appDate != "2026-01-19" {
		t.Errorf("appDate = %q, want 2026-01-19", appDate)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	_, err := runCLI(t, "nonexistent-command")
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecute_VersionSubcommand(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	defer func() {
		appVersion, appCommit, appDate = origVersion, origCommit, origDate
	}()
	SetVersionInfo("test-ver", "test-commit", "test-date")

	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "wdesk test-ver") || !strings.Contains(out, "commit: test-commit") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestCommandRegistration(t *testing.T) {
	want := map[string][]string{
		"version":    nil,
		"init":       nil,
		"login":      nil,
		"logout":     nil,
		"whoami":     nil,
		"register":   nil,
		"obs":        {"add", "edit", "rm", "ls", "mine"},
		"users":      {"ls", "add", "toggle", "role"},
		"status":     nil,
		"alerts":     {"watch"},
		"metrics":    nil,
		"dashboard":  nil,
		"mcp":        {"serve"},
		"completion": nil,
	}

	registered := map[string]map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		subs := map[string]bool{}
		for _, sub := range cmd.Commands() {
			subs[sub.Name()] = true
		}
		registered[cmd.Name()] = subs
	}

	for name, subs := range want {
		got, ok := registered[name]
		if !ok {
			t.Errorf("command %q not registered on root", name)
			continue
		}
		for _, sub := range subs {
			if !got[sub] {
				t.Errorf("subcommand %q not registered on %q", sub, name)
			}
		}
	}
}
