package testutil

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("buyer-42"), NewTestUUID("buyer-42"),
		"same seed must yield the same id")
	assert.NotEqual(t, NewTestUUID("buyer-42"), NewTestUUID("supplier-7"))
}

func TestRequireEventually(t *testing.T) {
	var hits atomic.Int32
	RequireEventually(t, func() bool {
		return hits.Add(1) >= 3
	}, time.Second, time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 30*time.Millisecond, 5*time.Millisecond)
}
