package server

import (
	"context"
	"net/http"
	"strings"
)

type principalKey struct{}

// Principal is the caller identity the gateway forwards. Role drives
// authorization, Actor lands in the audit trail.
type Principal struct {
	Role  string
	Actor string
}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFrom(ctx context.Context) Principal {
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}

// ActorFromContext is what module controllers record as the acting user.
// An anonymous caller is recorded as "anonymous".
func ActorFromContext(ctx context.Context) string {
	p := principalFrom(ctx)
	if p.Actor != "" {
		return p.Actor
	}
	if p.Role != "" {
		return p.Role
	}
	return "anonymous"
}

// principalMiddleware reads the identity headers set by the gateway.
func principalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := Principal{
			Role:  strings.TrimSpace(r.Header.Get("X-Role")),
			Actor: strings.TrimSpace(r.Header.Get("X-Actor")),
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}
