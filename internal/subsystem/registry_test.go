package subsystem

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryBootsHealthy(t *testing.T) {
	r := NewRegistry(DefaultNames())

	require.Equal(t, 5, r.Len())
	for i, s := range r.Snapshot() {
		assert.Equal(t, i+1, s.ID)
		assert.Equal(t, DefaultNames()[i], s.Name)
		assert.Equal(t, Healthy, s.Status)
		assert.Equal(t, FullHealth, s.Health)
		assert.Zero(t, s.RestartCount)
	}
}

func TestRegistryGetBounds(t *testing.T) {
	r := NewRegistry(DefaultNames())

	for _, id := range []int{-1, 0, 6, 100} {
		_, ok := r.Get(id)
		assert.False(t, ok, "id %d should be out of range", id)

		_, ok = r.Acquire(id)
		assert.False(t, ok, "id %d should not be acquirable", id)
	}

	s, ok := r.Get(3)
	require.True(t, ok)
	assert.Equal(t, "I/O", s.Name)
}

func TestHandleTransitionsKeepHealthInvariant(t *testing.T) {
	r := NewRegistry(DefaultNames())
	h, ok := r.Acquire(2)
	require.True(t, ok)
	defer h.Release()

	s := h.MarkFailed()
	assert.Equal(t, Failed, s.Status)
	assert.Equal(t, NoHealth, s.Health)

	s = h.MarkRecovering()
	assert.Equal(t, Recovering, s.Status)
	assert.Equal(t, NoHealth, s.Health)

	s = h.MarkHealthy()
	assert.Equal(t, Healthy, s.Status)
	assert.Equal(t, FullHealth, s.Health)

	s = h.IncRestarts()
	assert.Equal(t, 1, s.RestartCount)
	assert.Equal(t, s, h.State())
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry(DefaultNames())

	snap := r.Snapshot()
	snap[0].Status = Failed
	snap[0].Name = "changed"

	s, _ := r.Get(1)
	assert.Equal(t, Healthy, s.Status)
	assert.Equal(t, "CPU", s.Name)
}

func TestCountStatus(t *testing.T) {
	r := NewRegistry(DefaultNames())
	for _, id := range []int{1, 4} {
		h, _ := r.Acquire(id)
		h.MarkFailed()
		h.Release()
	}

	assert.Equal(t, 2, r.CountStatus(Failed))
	assert.Equal(t, 3, r.CountStatus(Healthy))
	assert.Equal(t, 0, r.CountStatus(Recovering))
}

func TestAcquireSerializesPerSubsystem(t *testing.T) {
	r := NewRegistry(DefaultNames())

	h1, ok := r.Acquire(1)
	require.True(t, ok)

	acquired := make(chan struct{})
	go func() {
		h, _ := r.Acquire(1)
		close(acquired)
		h.Release()
	}()

	// A different subsystem is independent.
	h2, ok := r.Acquire(2)
	require.True(t, ok)
	h2.Release()

	// Readers are not blocked by the operation lock.
	_, ok = r.Get(1)
	assert.True(t, ok)

	select {
	case <-acquired:
		t.Fatal("second acquire of the same subsystem should block")
	case <-time.After(20 * time.Millisecond):
	}

	h1.Release()
	assert.Eventually(t, func() bool {
		select {
		case <-acquired:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentRestartCounting(t *testing.T) {
	r := NewRegistry(DefaultNames())
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, _ := r.Acquire(5)
			defer h.Release()
			h.IncRestarts()
		}()
	}
	wg.Wait()

	s, _ := r.Get(5)
	assert.Equal(t, 50, s.RestartCount)
}

func TestStatusText(t *testing.T) {
	data, err := json.Marshal(Subsystem{ID: 1, Name: "CPU", Status: Recovering})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"CPU","status":"RECOVERING","health":0,"restart_count":0}`, string(data))

	var s Status
	require.NoError(t, s.UnmarshalText([]byte("failed")))
	assert.Equal(t, Failed, s)
	assert.Error(t, s.UnmarshalText([]byte("sleepy")))
	assert.Equal(t, "UNKNOWN", Status(9).String())
}
