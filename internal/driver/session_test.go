package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkessel/retropix/internal/domain"
)

// stubSource tracks whether it has been released.
type stubSource struct {
	closed int
}

func (s *stubSource) Size() (int, int) { return 4, 4 }

func (s *stubSource) FrameAt(time.Duration) (*domain.Frame, error) {
	if s.closed > 0 {
		return nil, domain.ErrSourceUnavailable
	}
	return domain.NewFrame(4, 4), nil
}

func (s *stubSource) Duration() time.Duration { return 0 }

func (s *stubSource) Close() error {
	s.closed++
	return nil
}

func TestSessionHasID(t *testing.T) {
	a := NewSession()
	b := NewSession()
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSessionReplaceSourceReleasesPrevious(t *testing.T) {
	s := NewSession()

	first := &stubSource{}
	require.NoError(t, s.ReplaceSource(first))
	assert.Equal(t, 0, first.closed)

	second := &stubSource{}
	require.NoError(t, s.ReplaceSource(second))
	assert.Equal(t, 1, first.closed, "previous source must be released on swap")
	assert.Equal(t, 0, second.closed)
	assert.Equal(t, second, s.Source().(*stubSource))
}

func TestSessionReplaceSourceClearsOutput(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.ReplaceSource(&stubSource{}))
	s.SetOutput(domain.NewFrame(2, 2))
	require.NotNil(t, s.Output())

	require.NoError(t, s.ReplaceSource(&stubSource{}))
	assert.Nil(t, s.Output(), "stale output must not survive a source swap")
}

func TestSessionCloseIdempotent(t *testing.T) {
	s := NewSession()
	src := &stubSource{}
	require.NoError(t, s.ReplaceSource(src))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, src.closed, "close must release the source exactly once")
	assert.Nil(t, s.Source())
}

func TestSessionSetOutputAfterCloseIgnored(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Close())

	s.SetOutput(domain.NewFrame(2, 2))
	assert.Nil(t, s.Output(), "a torn-down session must not accept stale results")
}
