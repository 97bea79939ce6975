// services/collection-service/internal/api/middleware.go
package api

import (
	"log"
	"time"

	"github.com/NaonWae12/RR-Net-sub002/services/collection-service/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const actorLocal = "actor"

// RequestLogger tags each request with an id and logs it once it is answered.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		start := time.Now()

		err := c.Next()
		if err != nil {
			// render now so the logged status is the one the client sees
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return nil
	}
}

// RequireActor resolves the bearer token into an auth.Actor.
func RequireActor(resolver ActorResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		actor, err := resolver.Resolve(header)
		if err != nil {
			log.Printf("[WARN] Rejected token on %s: %v", c.Path(), err)
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals(actorLocal, actor)
		c.SetUserContext(auth.WithActor(c.UserContext(), actor))
		return c.Next()
	}
}

// RequireRole lets only the listed roles through.
func RequireRole(roles ...auth.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := actorFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		if !actor.Is(roles...) {
			return fiber.NewError(fiber.StatusForbidden, "role "+string(actor.Role)+" may not use this endpoint")
		}
		return c.Next()
	}
}

func actorFrom(c *fiber.Ctx) (auth.Actor, bool) {
	a, ok := c.Locals(actorLocal).(auth.Actor)
	return a, ok
}
