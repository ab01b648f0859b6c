package main

import (
	"testing"

	"github.com/desertwitch/krkio/internal/platform"
	"github.com/stretchr/testify/mock"
)

type mockSystem struct {
	mock.Mock
}

func newMockSystem(t *testing.T) *mockSystem {
	t.Helper()

	m := &mockSystem{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *mockSystem) Getwd() (string, error) {
	args := m.Called()

	return args.String(0), args.Error(1)
}

func (m *mockSystem) Chdir(dir string) error {
	args := m.Called(dir)

	return args.Error(0)
}

func (m *mockSystem) Getpid() int {
	args := m.Called()

	return args.Int(0)
}

func (m *mockSystem) Access(path string, mode platform.AccessMode) bool {
	args := m.Called(path, mode)

	return args.Bool(0)
}

func (m *mockSystem) Uname() (platform.SystemInfo, error) {
	args := m.Called()
	info, _ := args.Get(0).(platform.SystemInfo)

	return info, args.Error(1)
}
