package pinger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_firstRtt(t *testing.T) {
	rtts := []time.Duration{
		11234 * time.Microsecond,
		5223 * time.Microsecond,
	}
	assert.Equal(t, 11234*time.Microsecond, firstRtt(rtts))
	assert.Equal(t, time.Duration(0), firstRtt(nil))
}
