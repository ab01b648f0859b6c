package resource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTracker_LiveAndLabels verifies registration and deregistration of
// handles.
func TestTracker_LiveAndLabels(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()

	a := New(&fakeNative{}, releaseFake, WithTracker(tracker), WithLabel("a"))
	b := New(&fakeNative{}, releaseFake, WithTracker(tracker), WithLabel("b"))
	c := New(&fakeNative{}, releaseFake, WithTracker(tracker), WithLabel("c"))

	assert.Equal(t, 3, tracker.Live())
	assert.Equal(t, []string{"a", "b", "c"}, tracker.Labels())

	require.NoError(t, b.Close())

	assert.Equal(t, 2, tracker.Live())
	assert.Equal(t, []string{"a", "c"}, tracker.Labels())

	require.NoError(t, a.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 0, tracker.Live())
}

// TestTracker_CloseAll verifies that all open handles are released, that a
// failing handle does not stop the others and that errors are joined.
func TestTracker_CloseAll(t *testing.T) {
	t.Parallel()

	tracker := NewTracker()
	errBoom := errors.New("boom")

	ok1 := &fakeNative{}
	failing := &fakeNative{err: errBoom}
	ok2 := &fakeNative{}

	New(ok1, releaseFake, WithTracker(tracker))
	New(failing, releaseFake, WithTracker(tracker))
	closed := New(ok2, releaseFake, WithTracker(tracker))
	require.NoError(t, closed.Close())

	err := tracker.CloseAll()
	require.ErrorIs(t, err, errBoom)

	assert.Equal(t, int32(1), ok1.released.Load())
	assert.Equal(t, int32(1), failing.released.Load())
	assert.Equal(t, int32(1), ok2.released.Load())
	assert.Equal(t, 0, tracker.Live())

	require.NoError(t, tracker.CloseAll(), "nothing left to close")
}
