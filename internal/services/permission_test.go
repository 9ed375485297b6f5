package services

import (
	"context"
	"errors"
	"testing"

	"whereabouts-backend/internal/models"
)

func newPermissionEnv(t *testing.T) (*contactEnv, context.Context) {
	t.Helper()
	env := newContactEnv()
	env.addUser(t, "alice", "alice@example.com", "Alice")
	env.addUser(t, "bob", "bob@example.com", "Bob")
	env.connect(t, "alice", "bob@example.com")
	return env, context.Background()
}

func TestGetLevelDefaultsToPlanet(t *testing.T) {
	env, ctx := newPermissionEnv(t)

	level, err := env.permSvc.GetLevel(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetLevel: %v", err)
	}
	if level != models.LevelPlanet {
		t.Errorf("level = %s, want planet", level)
	}
}

func TestSetLevel(t *testing.T) {
	env, ctx := newPermissionEnv(t)

	set, err := env.permSvc.SetLevel(ctx, "alice", "bob", "city")
	if err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if set != models.LevelCity {
		t.Errorf("set = %s, want city", set)
	}

	level, err := env.permSvc.GetLevel(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetLevel: %v", err)
	}
	if level != models.LevelCity {
		t.Errorf("level = %s, want city", level)
	}
}

func TestSetLevelReplacesPrior(t *testing.T) {
	env, ctx := newPermissionEnv(t)

	if _, err := env.permSvc.SetLevel(ctx, "alice", "bob", "address"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if _, err := env.permSvc.SetLevel(ctx, "alice", "bob", "country"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}

	level, err := env.permSvc.GetLevel(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetLevel: %v", err)
	}
	if level != models.LevelCountry {
		t.Errorf("level = %s, want country", level)
	}
}

func TestSetLevelInvalid(t *testing.T) {
	env, ctx := newPermissionEnv(t)

	for _, bad := range []string{"", "galaxy", "City", " city"} {
		if _, err := env.permSvc.SetLevel(ctx, "alice", "bob", bad); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SetLevel(%q): err = %v, want ErrInvalidArgument", bad, err)
		}
	}
}

func TestSetLevelNonContact(t *testing.T) {
	env, ctx := newPermissionEnv(t)
	env.addUser(t, "carol", "carol@example.com", "Carol")

	if _, err := env.permSvc.SetLevel(ctx, "alice", "carol", "city"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

// Grants are directed: setting one direction leaves the other at the default.
func TestGrantsAreAsymmetric(t *testing.T) {
	env, ctx := newPermissionEnv(t)

	if _, err := env.permSvc.SetLevel(ctx, "alice", "bob", "street"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}

	reverse, err := env.permSvc.GetLevel(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("GetLevel: %v", err)
	}
	if reverse != models.LevelPlanet {
		t.Errorf("reverse level = %s, want planet", reverse)
	}
}

func TestGetPair(t *testing.T) {
	env, ctx := newPermissionEnv(t)

	if _, err := env.permSvc.SetLevel(ctx, "alice", "bob", "city"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if _, err := env.permSvc.SetLevel(ctx, "bob", "alice", "state"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}

	granted, received, err := env.permSvc.GetPair(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetPair: %v", err)
	}
	if granted != models.LevelCity {
		t.Errorf("granted = %s, want city", granted)
	}
	if received != models.LevelState {
		t.Errorf("received = %s, want state", received)
	}
}

func TestGetPairNonContact(t *testing.T) {
	env, ctx := newPermissionEnv(t)
	env.addUser(t, "carol", "carol@example.com", "Carol")

	if _, _, err := env.permSvc.GetPair(ctx, "alice", "carol"); !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestLevelsEnumeration(t *testing.T) {
	env, _ := newPermissionEnv(t)

	levels, def := env.permSvc.Levels()
	if def != models.LevelPlanet {
		t.Errorf("default = %s, want planet", def)
	}
	if len(levels) != 9 {
		t.Fatalf("len(levels) = %d, want 9", len(levels))
	}
	if levels[0] != models.LevelPlanet || levels[len(levels)-1] != models.LevelAddress {
		t.Errorf("levels = %v, want planet..address", levels)
	}

	// Order is strictly coarse to fine.
	for i := 1; i < len(levels); i++ {
		if levels[i].Index() != levels[i-1].Index()+1 {
			t.Errorf("levels[%d] = %s breaks ordering", i, levels[i])
		}
	}
}
