package service

import (
	"github.com/google/uuid"
	"github.com/jengaest/estimation-api/internal/auth"
)

// Actor identifies the caller for ownership checks. Admins see and
// manage every estimate; everyone else only their own.
type Actor struct {
	UserID uuid.UUID
	Admin  bool
}

// ActorFrom builds an Actor from the authenticated user context.
func ActorFrom(user *auth.UserContext) Actor {
	return Actor{UserID: user.UserID, Admin: user.IsAdmin()}
}

func (a Actor) owns(ownerID uuid.UUID) bool {
	return a.Admin || a.UserID == ownerID
}
