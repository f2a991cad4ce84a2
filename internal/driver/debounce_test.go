package driver

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessel/retropix/internal/domain"
)

type configRecorder struct {
	mu      sync.Mutex
	applied []domain.FilterConfig
}

func (r *configRecorder) apply(cfg domain.FilterConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, cfg)
}

func (r *configRecorder) snapshot() []domain.FilterConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FilterConfig(nil), r.applied...)
}

func TestDebouncerDeliversOnlySettledConfig(t *testing.T) {
	rec := &configRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.apply)
	defer d.Stop()

	// Rapid updates, as if dragging a slider.
	for i := 1; i <= 5; i++ {
		cfg := domain.DefaultConfig()
		cfg.PixelSize = i
		d.Update(cfg)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	applied := rec.snapshot()
	require.Len(t, applied, 1, "only the settled value should be applied")
	assert.Equal(t, 5, applied[0].PixelSize)
}

func TestDebouncerReArmsAfterDelivery(t *testing.T) {
	rec := &configRecorder{}
	d := NewDebouncer(20*time.Millisecond, rec.apply)
	defer d.Stop()

	first := domain.DefaultConfig()
	first.PixelSize = 2
	d.Update(first)
	time.Sleep(60 * time.Millisecond)

	second := domain.DefaultConfig()
	second.PixelSize = 7
	d.Update(second)
	time.Sleep(60 * time.Millisecond)

	applied := rec.snapshot()
	require.Len(t, applied, 2)
	assert.Equal(t, 2, applied[0].PixelSize)
	assert.Equal(t, 7, applied[1].PixelSize)
}

func TestDebouncerStop(t *testing.T) {
	rec := &configRecorder{}
	d := NewDebouncer(20*time.Millisecond, rec.apply)

	d.Update(domain.DefaultConfig())
	d.Stop()
	d.Stop() // idempotent

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot(), "stopped debouncer must not deliver")

	// Updates after stop are discarded.
	d.Update(domain.DefaultConfig())
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
}
