package services

import (
	"math"
	"testing"

	"dealroom_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLimits_Defaults(t *testing.T) {
	limits, ok := NormalizeLimits(models.ExchangeLimits{})
	assert.True(t, ok)
	assert.Equal(t, float64(1), limits.Min)
	assert.Equal(t, math.MaxFloat64, limits.Max)
}

func TestNormalizeLimits_OpenEndedMax(t *testing.T) {
	limits, ok := NormalizeLimits(models.ExchangeLimits{Min: 50})
	assert.True(t, ok)
	assert.Equal(t, float64(50), limits.Min)
	assert.Equal(t, math.MaxFloat64, limits.Max)
}

func TestNormalizeLimits_ExplicitRangeKept(t *testing.T) {
	limits, ok := NormalizeLimits(models.ExchangeLimits{Min: 10, Max: 100})
	assert.True(t, ok)
	assert.Equal(t, float64(10), limits.Min)
	assert.Equal(t, float64(100), limits.Max)
}

func TestNormalizeLimits_Invalid(t *testing.T) {
	_, ok := NormalizeLimits(models.ExchangeLimits{Min: 100, Max: 10})
	assert.False(t, ok)

	_, ok = NormalizeLimits(models.ExchangeLimits{Min: -1})
	assert.False(t, ok)

	_, ok = NormalizeLimits(models.ExchangeLimits{Max: -5})
	assert.False(t, ok)
}
