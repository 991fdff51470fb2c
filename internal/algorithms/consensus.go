package algorithms

import "dealroom_backend/internal/models"

// scanState makes the "skip rejected, compare to prev" contract explicit.
type scanState int

const (
	seekingFirst scanState = iota
	matching
)

// CheckDispute evaluates arbitrator decisions for a disputed deal. decisions
// must be in chronological order (oldest first); the scan itself runs newest
// first. A rejected entry never counts toward consensus and never breaks a
// streak. Three agreeing non-rejected decisions resolve the dispute; a single
// disagreement before that leaves it unresolved. Fewer than three recorded
// decisions never resolve.
//
// The second return value is false while the dispute stays unresolved. That
// is a valid outcome, not an error: the caller keeps collecting decisions or
// draws another arbitrator.
func CheckDispute(decisions []models.EscrowDecision) (models.EscrowDecision, bool) {
	if len(decisions) < 3 {
		return "", false
	}

	state := seekingFirst
	var prev models.EscrowDecision
	matches := 0

	for i := len(decisions) - 1; i >= 0; i-- {
		d := decisions[i]
		if d == models.DecisionRejected {
			continue
		}

		switch state {
		case seekingFirst:
			prev = d
			state = matching
		case matching:
			if d != prev {
				return "", false
			}
			matches++
			if matches == 2 {
				return prev, true
			}
		}
	}

	// Ran out of decisions before two matches accumulated (or every entry
	// was rejected).
	return "", false
}
