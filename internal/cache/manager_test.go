package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/juju/fslock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qm-layer/internal/diagnostic"
)

func newTestManager(t *testing.T, root string) *Manager {
	t.Helper()

	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	return New(root, WithLogger(logger), WithPollInterval(5*time.Millisecond))
}

func writeString(s string) Producer {
	return func(w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	}
}

func TestResolve(t *testing.T) {
	m := New("/cache/qm")

	tests := []struct {
		prefix   string
		version  string
		expected string
	}{
		{"qm_to_intermediary", "1.18.2", "/cache/qm/qm_to_intermediary_1.18.2.tiny"},
		{"hashed", "22w14a", "/cache/qm/hashed_22w14a.tiny"},
		{"qm", "1.19-pre1+build.3", "/cache/qm/qm_1.19-pre1+build.3.tiny"},
		{"qm", "../../etc", "/cache/qm/qm_.._.._etc.tiny"},
		{"qm", "1.18 Pre-release 1", "/cache/qm/qm_1.18_Pre-release_1.tiny"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tt.expected), m.Resolve(tt.prefix, tt.version))
		})
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, dir)

	full := filepath.Join(dir, "full.tiny")
	require.NoError(t, os.WriteFile(full, []byte("tiny\t2\t0\ta\tb\n"), 0o644))

	empty := filepath.Join(dir, "empty.tiny")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	assert.True(t, m.Exists(full))
	assert.False(t, m.Exists(empty))
	assert.False(t, m.Exists(filepath.Join(dir, "missing.tiny")))
	assert.False(t, m.Exists(dir))
}

func TestMaterializeRunsProducerOnce(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	path := m.Resolve("qm_to_intermediary", "1.18.2")

	var calls int

	produce := func(w io.Writer) error {
		calls++
		return writeString("content\n")(w)
	}

	ran, err := m.Materialize(context.Background(), path, produce)
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = m.Materialize(context.Background(), path, produce)
	require.NoError(t, err)
	assert.False(t, ran)

	assert.Equal(t, 1, calls)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content\n", string(data))
}

func TestMaterializeFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, dir)
	path := m.Resolve("qm_to_intermediary", "1.18.2")

	boom := errors.New("merge failed")

	_, err := m.Materialize(context.Background(), path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "half a file")
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.False(t, m.Exists(path))

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)

	// A later attempt starts from scratch.
	ran, err := m.Materialize(context.Background(), path, writeString("ok\n"))
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestMaterializeRejectsEmptyOutput(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	path := m.Resolve("qm", "1.18.2")

	_, err := m.Materialize(context.Background(), path, writeString(""))
	require.ErrorIs(t, err, diagnostic.ErrFormat)
	assert.False(t, m.Exists(path))
}

func TestMaterializeConcurrent(t *testing.T) {
	dir := t.TempDir()

	// Separate managers share nothing in memory, so only the lock file
	// serializes them.
	managers := []*Manager{newTestManager(t, dir), newTestManager(t, dir), newTestManager(t, dir)}
	path := managers[0].Resolve("qm_to_intermediary", "1.18.2")

	var (
		calls atomic.Int32
		wg    sync.WaitGroup
	)

	produce := func(w io.Writer) error {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)

		return writeString("merged\n")(w)
	}

	for i := range 12 {
		wg.Add(1)

		go func(m *Manager) {
			defer wg.Done()

			_, err := m.Materialize(context.Background(), path, produce)
			assert.NoError(t, err)
		}(managers[i%len(managers)])
	}

	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "merged\n", string(data))
}

func TestMaterializeHonorsContextWhileLocked(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, dir)
	path := m.Resolve("qm", "1.18.2")

	held := fslock.New(path + lockExt)
	require.NoError(t, held.TryLock())

	defer func() { _ = held.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := m.Materialize(ctx, path, writeString("never\n"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, m.Exists(path))
}
