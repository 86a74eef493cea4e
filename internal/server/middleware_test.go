package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func newTestLimiters(rpm int) (*ipLimiters, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
	l := newIPLimiters(rate.Limit(float64(rpm)/60), rpm)
	l.now = clock.now
	l.lastSweep = clock.t
	return l, clock
}

func TestIPLimiters_IdleTTLCoversRefill(t *testing.T) {
	l, _ := newTestLimiters(60)
	assert.Equal(t, time.Minute, l.idleTTL)

	slow, _ := newTestLimiters(2)
	assert.Equal(t, time.Minute, slow.idleTTL)

	zero := newIPLimiters(0, 5)
	assert.Equal(t, 10*time.Minute, zero.idleTTL)
}

func TestIPLimiters_EvictsIdleClients(t *testing.T) {
	l, clock := newTestLimiters(60)

	for i := 0; i < 50; i++ {
		l.get(fmt.Sprintf("203.0.113.%d", i))
	}
	require.Equal(t, 50, l.size())

	clock.advance(30 * time.Second)
	l.get("203.0.113.1")
	assert.Equal(t, 50, l.size())

	clock.advance(45 * time.Second)
	l.get("198.51.100.9")
	assert.Equal(t, 2, l.size(), "only the recently seen client and the new one remain")
}

func TestIPLimiters_ReusesActiveLimiter(t *testing.T) {
	l, clock := newTestLimiters(2)

	first := l.get("203.0.113.5")
	require.True(t, first.Allow())
	require.True(t, first.Allow())

	clock.advance(10 * time.Second)
	again := l.get("203.0.113.5")
	assert.Same(t, first, again)
	assert.False(t, again.Allow(), "an active client keeps its drained bucket")
}

func TestIPLimiters_SweepsWhenFull(t *testing.T) {
	l, clock := newTestLimiters(60)

	for i := 0; i < maxTrackedClients; i++ {
		l.get(fmt.Sprintf("10.%d.%d.%d", i>>16&0xff, i>>8&0xff, i&0xff))
	}
	require.Equal(t, maxTrackedClients, l.size())

	clock.advance(time.Minute)
	l.lastSweep = clock.t
	l.get("192.0.2.1")
	assert.Equal(t, 1, l.size())
}
