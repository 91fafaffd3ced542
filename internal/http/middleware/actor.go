package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"districtops/internal/model"
)

// Headers set by the upstream identity proxy.
const (
	ActorIDHeader    = "X-Actor-ID"
	ActorRoleHeader  = "X-Actor-Role"
	DistrictIDHeader = "X-District-ID"

	actorLocalKey = "actor"
)

// Actor copies the identity headers into locals. Requests without headers get
// a zero Actor; services decide whether that is acceptable.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(actorLocalKey, model.Actor{
			ID:         strings.TrimSpace(c.Get(ActorIDHeader)),
			Role:       model.Role(strings.ToLower(strings.TrimSpace(c.Get(ActorRoleHeader)))),
			DistrictID: strings.TrimSpace(c.Get(DistrictIDHeader)),
		})
		return c.Next()
	}
}

// ActorFrom returns the actor stored by Actor, or the zero Actor.
func ActorFrom(c *fiber.Ctx) model.Actor {
	a, _ := c.Locals(actorLocalKey).(model.Actor)
	return a
}
