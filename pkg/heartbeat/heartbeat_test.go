package heartbeat

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/edbridge/pkg/bridge"
)

type recordEvents struct {
	mu            sync.Mutex
	notifications []string
}

func (r *recordEvents) Notify(level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, level+":"+message)
}

func (r *recordEvents) Stream(string, string) {}

func (r *recordEvents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}

func (r *recordEvents) first() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notifications) == 0 {
		return ""
	}
	return r.notifications[0]
}

func TestHeartbeat_EmitsLivenessNotifications(t *testing.T) {
	rec := &recordEvents{}
	h, err := New(Config{Interval: 50 * time.Millisecond}, rec, nil)
	require.NoError(t, err)

	h.Start()
	defer h.Stop()

	require.Eventually(t, func() bool { return rec.count() >= 2 },
		3*time.Second, 10*time.Millisecond)

	assert.True(t, strings.HasPrefix(rec.first(), bridge.LevelInfo+":heartbeat pid="))
}

func TestHeartbeat_ZeroIntervalDisablesBeat(t *testing.T) {
	rec := &recordEvents{}
	h, err := New(Config{}, rec, nil)
	require.NoError(t, err)

	h.Start()
	time.Sleep(150 * time.Millisecond)
	h.Stop()

	assert.Zero(t, rec.count())
}

func TestHeartbeat_NilHistorySkipsPruneJob(t *testing.T) {
	rec := &recordEvents{}
	h, err := New(Config{PruneInterval: time.Millisecond, PruneMaxAge: time.Hour}, rec, nil)
	require.NoError(t, err)

	h.Start()
	time.Sleep(50 * time.Millisecond)
	// No panic from a nil store means the job was never registered.
	h.Stop()
}

func TestHeartbeat_StopWaitsForJobs(t *testing.T) {
	rec := &recordEvents{}
	h, err := New(Config{Interval: 10 * time.Millisecond}, rec, nil)
	require.NoError(t, err)

	h.Start()
	require.Eventually(t, func() bool { return rec.count() >= 1 },
		3*time.Second, 5*time.Millisecond)
	h.Stop()

	settled := rec.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, rec.count())
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 30*time.Second, config.Interval)
	assert.Equal(t, time.Hour, config.PruneInterval)
	assert.Equal(t, 30*24*time.Hour, config.PruneMaxAge)
}
