// services/collection-service/internal/auth/actor.go
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCollector Role = "collector"
	RoleFinance   Role = "finance"
	RoleAdmin     Role = "admin"
	// RoleSystem is used by background workers and workflows.
	RoleSystem Role = "system"
)

var (
	ErrUnauthenticated = errors.New("missing or invalid credentials")
	// ErrForbidden: the actor's role may not perform the action.
	ErrForbidden = errors.New("actor is not allowed to perform this action")
)

// Actor is who performs an operation. Role resolution itself belongs to the
// identity service; this package only carries the result.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
	Role     Role
}

func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// System returns the actor used by background jobs of a tenant.
func System(tenantID uuid.UUID) Actor {
	return Actor{UserID: uuid.Nil, TenantID: tenantID, Role: RoleSystem}
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
