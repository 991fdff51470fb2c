package services

import "errors"

var (
	// ErrNotParticipant rejects a room join by a user who is neither buyer,
	// seller nor a drawn escrow. The connection layer drops it silently.
	ErrNotParticipant = errors.New("user is not a deal participant")

	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyReviewed  = errors.New("deal already reviewed by this author")
	ErrDealNotOpen      = errors.New("deal is not open for this operation")
	ErrNoEligibleEscrow = errors.New("no eligible escrow left")
)

// Broadcaster is the slice of the connection layer the services need: named
// events fanned out to one user's connections or to a deal room.
type Broadcaster interface {
	BroadcastToUser(userID string, event string, data any)
	BroadcastToRoom(dealID string, event string, data any)
	UserInRoom(userID, dealID string) bool
}
