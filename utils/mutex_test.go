package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutexAssertHeld(t *testing.T) {
	var mu Mutex
	assert.Panics(t, func() { mu.AssertHeld() })

	mu.Lock()
	assert.NotPanics(t, func() { mu.AssertHeld() })
	mu.Unlock()

	assert.Panics(t, func() { mu.AssertHeld() })
}
