package fileio

import (
	"bytes"
	"os"
	"testing"

	"github.com/desertwitch/krkio/internal/platform"
	"github.com/stretchr/testify/mock"
)

type mockFileSystem struct {
	mock.Mock
}

func newMockFileSystem(t *testing.T) *mockFileSystem {
	t.Helper()

	m := &mockFileSystem{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockFileSystem) OpenFile(name string, flag int, perm os.FileMode) (platform.NativeFile, error) {
	args := m.Called(name, flag, perm)
	f, _ := args.Get(0).(platform.NativeFile)

	return f, args.Error(1)
}

func (m *mockFileSystem) OpenDir(name string) (platform.NativeDir, error) {
	args := m.Called(name)
	d, _ := args.Get(0).(platform.NativeDir)

	return d, args.Error(1)
}

type mockNativeDir struct {
	mock.Mock
}

func newMockNativeDir(t *testing.T) *mockNativeDir {
	t.Helper()

	m := &mockNativeDir{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockNativeDir) ReadEntry() (platform.DirEntry, error) {
	args := m.Called()
	e, _ := args.Get(0).(platform.DirEntry)

	return e, args.Error(1)
}

func (m *mockNativeDir) Close() error {
	return m.Called().Error(0)
}

// fakeFile is a native file over an in-memory buffer, with injectable errors.
type fakeFile struct {
	name     string
	data     bytes.Buffer
	readErr  error
	writeErr error
	closeErr error
	closed   int
}

func (f *fakeFile) Name() string { return f.name }

func (f *fakeFile) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}

	return f.data.Read(p) //nolint:wrapcheck
}

func (f *fakeFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}

	return f.data.Write(p) //nolint:wrapcheck
}

func (f *fakeFile) Close() error {
	f.closed++

	return f.closeErr
}
