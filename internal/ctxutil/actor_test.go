package ctxutil

import (
	"context"
	"testing"
)

func TestActorFromContext(t *testing.T) {
	if got := ActorFromContext(context.Background()); got != "" {
		t.Errorf("expected empty actor, got %q", got)
	}

	ctx := WithActorID(context.Background(), "alice")
	if got := ActorFromContext(ctx); got != "alice" {
		t.Errorf("ActorFromContext = %q, want %q", got, "alice")
	}
}

func TestLocalActor_PrefersEnv(t *testing.T) {
	t.Setenv("NEXTACTION_ACTOR", "sweeper")
	if got := LocalActor(); got != "sweeper" {
		t.Errorf("LocalActor = %q, want %q", got, "sweeper")
	}
}
