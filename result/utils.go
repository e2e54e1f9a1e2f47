package result

import (
	"encoding/base64"
	"math"

	"github.com/google/uuid"
)

// NewID returns a random UUID encoded with base64 for a shorter identifier
func NewID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
