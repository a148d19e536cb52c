package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meltforce/pulsefit/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PULSEFIT_STORAGE_PATH", filepath.Join(t.TempDir(), "pulsefit.db"))
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// TestParseCategory verifies category flags match case-insensitively.
func TestParseCategory(t *testing.T) {
	if c, err := parseCategory("hiit"); err != nil || c != models.CategoryHIIT {
		t.Errorf("parseCategory(hiit) = %q, %v", c, err)
	}
	if c, err := parseCategory(""); err != nil || c != "" {
		t.Errorf("parseCategory(\"\") = %q, %v", c, err)
	}
	if _, err := parseCategory("yoga"); err == nil {
		t.Error("expected error for unknown category")
	}
}

// TestWorkoutsCommand verifies the catalog listing filters by category.
func TestWorkoutsCommand(t *testing.T) {
	out, err := run(t, "workouts", "--category", "Core")
	if err != nil {
		t.Fatalf("workouts: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) < 2 {
		t.Fatalf("output = %q, want header and rows", out)
	}
	for _, l := range lines[1:] {
		if !strings.Contains(l, "Core") {
			t.Errorf("row %q is not a Core workout", l)
		}
	}
}

// TestProfileSeedAndHistory verifies seeding, the dashboard output and an
// empty history on a fresh database.
func TestProfileSeedAndHistory(t *testing.T) {
	t.Setenv("PULSEFIT_STORAGE_PATH", filepath.Join(t.TempDir(), "pulsefit.db"))
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)

	root.SetArgs([]string{"profile"})
	if err := root.Execute(); err != nil {
		t.Fatalf("profile: %v", err)
	}
	if !strings.Contains(out.String(), "No profile yet") {
		t.Errorf("empty profile output = %q", out.String())
	}

	out.Reset()
	root.SetArgs([]string{"profile", "--seed"})
	if err := root.Execute(); err != nil {
		t.Fatalf("profile --seed: %v", err)
	}
	if !strings.Contains(out.String(), "Keisha") || !strings.Contains(out.String(), "Streak    5 days") {
		t.Errorf("seeded profile output = %q", out.String())
	}

	out.Reset()
	root.SetArgs([]string{"history"})
	if err := root.Execute(); err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.TrimSpace(out.String()) != "no sessions" {
		t.Errorf("history output = %q", out.String())
	}
}

// TestResetRequiresConfirmation verifies reset refuses to run without --yes.
func TestResetRequiresConfirmation(t *testing.T) {
	if _, err := run(t, "reset"); err == nil {
		t.Fatal("expected error without --yes")
	}
	out, err := run(t, "reset", "--yes")
	if err != nil {
		t.Fatalf("reset --yes: %v", err)
	}
	if !strings.Contains(out, "cleared") {
		t.Errorf("output = %q", out)
	}
}
