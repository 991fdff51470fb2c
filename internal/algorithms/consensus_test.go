package algorithms

import (
	"testing"

	"dealroom_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

const (
	accepted = models.DecisionAccepted
	rejected = models.DecisionRejected
	pending  = models.DecisionPending
)

func TestCheckDispute_TooFewDecisions(t *testing.T) {
	cases := [][]models.EscrowDecision{
		nil,
		{accepted},
		{accepted, accepted},
		{rejected, rejected},
	}

	for _, decisions := range cases {
		_, resolved := CheckDispute(decisions)
		assert.False(t, resolved, "decisions %v must stay unresolved", decisions)
	}
}

func TestCheckDispute_ThreeAgreeing(t *testing.T) {
	outcome, resolved := CheckDispute([]models.EscrowDecision{accepted, accepted, accepted})
	assert.True(t, resolved)
	assert.Equal(t, accepted, outcome)
}

func TestCheckDispute_RejectedNeverBreaksStreak(t *testing.T) {
	// Oldest → newest; the scan runs newest first and skips rejected
	// entries entirely.
	outcome, resolved := CheckDispute([]models.EscrowDecision{accepted, rejected, accepted, accepted})
	assert.True(t, resolved)
	assert.Equal(t, accepted, outcome)
}

func TestCheckDispute_RejectedNeverCounts(t *testing.T) {
	// Length ≥ 3 but only one non-rejected decision exists.
	_, resolved := CheckDispute([]models.EscrowDecision{accepted, rejected, rejected})
	assert.False(t, resolved)

	_, resolved = CheckDispute([]models.EscrowDecision{accepted, rejected, rejected, rejected})
	assert.False(t, resolved)
}

func TestCheckDispute_DisagreementStaysOpen(t *testing.T) {
	// A disagreement before two matches accumulate is never guessed at.
	_, resolved := CheckDispute([]models.EscrowDecision{pending, accepted, accepted})
	assert.False(t, resolved)

	_, resolved = CheckDispute([]models.EscrowDecision{accepted, accepted, pending})
	assert.False(t, resolved)
}

func TestCheckDispute_AllRejected(t *testing.T) {
	// No non-rejected decision at all: the scan falls through without a
	// prev and must report unresolved, not crash.
	_, resolved := CheckDispute([]models.EscrowDecision{rejected, rejected, rejected, rejected})
	assert.False(t, resolved)
}

func TestCheckDispute_LateConsensusAfterMixedHistory(t *testing.T) {
	// Two early rejects, then three agreeing decisions arrive.
	outcome, resolved := CheckDispute([]models.EscrowDecision{
		rejected, rejected, accepted, accepted, accepted,
	})
	assert.True(t, resolved)
	assert.Equal(t, accepted, outcome)
}
