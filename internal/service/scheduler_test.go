package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfirmScheduler(t *testing.T) {
	s := newConfirmScheduler()
	var fired atomic.Int32

	s.schedule("VT1", time.Hour, func() { fired.Add(1) })
	s.schedule("VT2", time.Hour, func() { fired.Add(1) })
	assert.Equal(t, 2, s.outstanding())

	// rescheduling replaces the handle instead of adding one
	s.schedule("VT1", time.Hour, func() { fired.Add(1) })
	assert.Equal(t, 2, s.outstanding())

	assert.True(t, s.cancel("VT1"))
	assert.False(t, s.cancel("VT1"))
	assert.Equal(t, 1, s.cancelAll())
	assert.Zero(t, s.outstanding())

	s.schedule("VT3", -time.Second, func() { fired.Add(1) })
	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
}
