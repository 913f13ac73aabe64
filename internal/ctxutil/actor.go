// Package ctxutil carries the acting user through a context.
// It has no internal dependencies so services and adapters can both import it.
package ctxutil

import (
	"context"
	"os"
	"strings"
)

// ActorEnv names the environment variable holding the acting user id.
const ActorEnv = "GARAGE_ACTOR"

type actorKey struct{}

// WithActorID returns a context acting as the given user.
// A blank id leaves ctx unchanged.
func WithActorID(ctx context.Context, userID string) context.Context {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the acting user id, or "" when unset.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

// ActorFromEnv returns a context acting as $GARAGE_ACTOR when it is set.
func ActorFromEnv(ctx context.Context) context.Context {
	return WithActorID(ctx, os.Getenv(ActorEnv))
}
