package environ

import (
	"errors"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"

	"github.com/desertwitch/krkio/internal/configuration"
	"github.com/desertwitch/krkio/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEnvironment struct {
	mock.Mock
}

func newMockEnvironment(t *testing.T, environ ...string) *mockEnvironment {
	t.Helper()

	m := &mockEnvironment{}
	m.Test(t)
	m.On("Environ").Return(environ).Once()
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockEnvironment) Environ() []string {
	environ, _ := m.Called().Get(0).([]string)

	return environ
}

func (m *mockEnvironment) Setenv(key, value string) error {
	return m.Called(key, value).Error(0)
}

func (m *mockEnvironment) Unsetenv(key string) error {
	return m.Called(key).Error(0)
}

// TestLoad_Success verifies the snapshot taken of the environment.
func TestLoad_Success(t *testing.T) {
	t.Parallel()

	o := Load(newMockEnvironment(t, "HOME=/root", "EMPTY=", "BROKEN", "=nokey", "EQ=a=b"))

	assert.Equal(t, 3, o.Len())
	assert.Equal(t, []string{"EMPTY", "EQ", "HOME"}, o.Keys())
	assert.Equal(t, "/root", o.Get("HOME"))
	assert.Equal(t, "a=b", o.Get("EQ"))

	value, ok := o.Lookup("EMPTY")
	assert.True(t, ok)
	assert.Empty(t, value)

	_, ok = o.Lookup("BROKEN")
	assert.False(t, ok)
}

// TestSet_Success verifies that a variable is set on the platform and then
// mirrored.
func TestSet_Success(t *testing.T) {
	t.Parallel()

	env := newMockEnvironment(t)
	env.On("Setenv", "KEY", "VALUE").Return(nil).Once()

	o := Load(env)
	require.NoError(t, o.Set("KEY", "VALUE"))

	assert.Equal(t, "VALUE", o.Get("KEY"))
}

// TestSet_Fail_Platform verifies that a refused variable leaves the overlay
// unchanged and reports the platform description.
func TestSet_Fail_Platform(t *testing.T) {
	t.Parallel()

	env := newMockEnvironment(t, "KEY=old")
	env.On("Setenv", "KEY", "new").Return(os.NewSyscallError("setenv", syscall.ENOMEM)).Once()

	o := Load(env)
	before := o.Snapshot()

	err := o.Set("KEY", "new")
	require.ErrorIs(t, err, ErrEnvSet)
	require.ErrorIs(t, err, syscall.ENOMEM)
	assert.Contains(t, err.Error(), syscall.ENOMEM.Error())

	assert.Equal(t, before, o.Snapshot())
	assert.Equal(t, "old", o.Get("KEY"))
}

// TestDelete_Success verifies that a deleted variable is removed from the
// platform and the overlay.
func TestDelete_Success(t *testing.T) {
	t.Parallel()

	env := newMockEnvironment(t)
	env.On("Setenv", "KEY", "VALUE").Return(nil).Once()
	env.On("Unsetenv", "KEY").Return(nil).Once()

	o := Load(env)
	require.NoError(t, o.Set("KEY", "VALUE"))
	require.NoError(t, o.Delete("KEY"))

	_, ok := o.Lookup("KEY")
	assert.False(t, ok)
	assert.Zero(t, o.Len())
}

// TestDelete_Fail_Table verifies the failures of deleting a variable.
func TestDelete_Fail_Table(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		unsetErr error
		expected error
		remains  bool
	}{
		{"Fail_Platform", os.NewSyscallError("unsetenv", syscall.EINVAL), ErrEnvUnset, true},
		{"Fail_NotSet", nil, ErrNotSet, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			environ := []string{}
			key := "MISSING"
			if tc.remains {
				environ = append(environ, "KEY=VALUE")
				key = "KEY"
			}

			env := newMockEnvironment(t, environ...)
			env.On("Unsetenv", key).Return(tc.unsetErr).Once()

			o := Load(env)
			err := o.Delete(key)
			require.ErrorIs(t, err, tc.expected)

			_, ok := o.Lookup(key)
			assert.Equal(t, tc.remains, ok)
		})
	}
}

// TestAll_Success verifies that iteration is sorted and works on a snapshot,
// so that the overlay can be mutated while iterating.
func TestAll_Success(t *testing.T) {
	t.Parallel()

	o := Load(platform.NewMapEnv("B=2", "A=1", "C=3"))

	var keys []string
	for key, value := range o.All() {
		keys = append(keys, key)
		require.NoError(t, o.Set(key+"_COPY", value))
	}

	assert.Equal(t, []string{"A", "B", "C"}, keys)
	assert.Equal(t, 6, o.Len())
	assert.Equal(t, "2", o.Get("B_COPY"))

	count := 0
	for range o.All() {
		count++

		break
	}
	assert.Equal(t, 1, count)
}

// TestOverlay_MapEnv_Consistency verifies that the overlay and the platform
// agree after a series of mutations, including refused ones.
func TestOverlay_MapEnv_Consistency(t *testing.T) {
	t.Parallel()

	env := platform.NewMapEnv("KEEP=1", "DROP=2")
	o := Load(env)

	require.NoError(t, o.Set("NEW", "3"))
	require.NoError(t, o.Delete("DROP"))
	require.ErrorIs(t, o.Set("BAD=KEY", "x"), ErrEnvSet)
	require.ErrorIs(t, o.Set("", "x"), ErrEnvSet)
	require.ErrorIs(t, o.Delete("DROP"), ErrNotSet)

	assert.Equal(t, maps.Collect(Load(env).All()), o.Snapshot())
	assert.Equal(t, map[string]string{"KEEP": "1", "NEW": "3"}, o.Snapshot())
}

// TestOverlay_Concurrent verifies that concurrent mutations leave the overlay
// consistent with the platform.
func TestOverlay_Concurrent(t *testing.T) {
	t.Parallel()

	env := platform.NewMapEnv()
	o := Load(env)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			key := string(rune('A' + i))
			for range 50 {
				_ = o.Set(key, "x")
				_ = o.Delete(key)
				_ = o.Set(key, "y")
				_ = o.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, o.Len())
	assert.Equal(t, maps.Collect(Load(env).All()), o.Snapshot())
}

// TestImport_Success verifies that variables of configuration files are set
// on the platform and in the overlay.
func TestImport_Success(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(first, []byte("# comment\nA=1\nB=\"quoted value\"\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("C=3\n"), 0o600))

	env := platform.NewMapEnv("A=0")
	o := Load(env)

	require.NoError(t, o.Import(&configuration.GodotenvProvider{}, first, second))

	assert.Equal(t, "1", o.Get("A"))
	assert.Equal(t, "quoted value", o.Get("B"))
	assert.Equal(t, "3", o.Get("C"))
	assert.Equal(t, []string{"A=1", "B=quoted value", "C=3"}, env.Environ())

	require.NoError(t, o.Import(&configuration.GodotenvProvider{}), "no files should be a no-op")
}

// TestImport_Fail_Table verifies the failures of importing configuration
// files.
func TestImport_Fail_Table(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("Fail_Missing", func(t *testing.T) {
		t.Parallel()

		o := Load(platform.NewMapEnv())
		err := o.Import(&configuration.GodotenvProvider{}, filepath.Join(dir, "missing.env"))
		require.ErrorIs(t, err, os.ErrNotExist)
		assert.Zero(t, o.Len())
	})

	t.Run("Fail_Refused", func(t *testing.T) {
		t.Parallel()

		refused := errors.New("refused")
		env := newMockEnvironment(t)
		env.On("Setenv", "A", "1").Return(refused).Once()

		o := Load(env)
		err := o.Import(staticReader{"A": "1"}, "any.env")
		require.ErrorIs(t, err, ErrEnvSet)
		require.ErrorIs(t, err, refused)
		assert.Zero(t, o.Len())
	})
}

type staticReader map[string]string

func (r staticReader) Read(...string) (map[string]string, error) {
	return r, nil
}
