// Package ctxutil carries request-scoped values through context.Context.
// It has no internal dependencies so any package can import it.
package ctxutil

import (
	"context"
	"os"
	"os/user"
)

type actorKey struct{}

// WithActorID returns a context carrying the actor performing an operation.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	actorID, _ := ctx.Value(actorKey{}).(string)
	return actorID
}

// LocalActor identifies the user running the CLI: $NEXTACTION_ACTOR if set,
// otherwise the OS user name.
func LocalActor() string {
	if actor := os.Getenv("NEXTACTION_ACTOR"); actor != "" {
		return actor
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
