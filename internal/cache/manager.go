package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/juju/fslock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"qm-layer/internal/diagnostic"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

const (
	fileExt             = ".tiny"
	lockExt             = ".lock"
	defaultPollInterval = 100 * time.Millisecond
)

// Producer writes the complete content of a cache file to w.
type Producer func(w io.Writer) error

// Manager derives cache paths under a fixed root and publishes cache files.
type Manager struct {
	root         string
	log          logrus.FieldLogger
	pollInterval time.Duration
	group        singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// WithPollInterval sets how often a locked cache file is re-checked.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.pollInterval = d
	}
}

// New creates a Manager rooted at root.
func New(root string, opts ...Option) *Manager {
	m := &Manager{
		root:         root,
		log:          logrus.StandardLogger(),
		pollInterval: defaultPollInterval,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Root returns the cache root directory.
func (m *Manager) Root() string {
	return m.root
}

// Resolve returns the cache path for a file kind and game version, e.g.
// <root>/qm_to_intermediary_1.18.2.tiny.
func (m *Manager) Resolve(prefix, version string) string {
	return filepath.Join(m.root, prefix+"_"+sanitize(version)+fileExt)
}

// sanitize keeps versions usable as file names.
func sanitize(version string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_', r == '+':
			return r
		default:
			return '_'
		}
	}, version)
}

// Exists reports whether path is a non-empty regular file. Content is never
// inspected.
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular() && info.Size() > 0
}

// Materialize makes sure path exists, running produce if it does not. It
// reports whether produce ran. When produce fails nothing is published and
// its error is returned unchanged.
func (m *Manager) Materialize(ctx context.Context, path string, produce Producer) (bool, error) {
	if m.Exists(path) {
		m.log.WithField("path", path).Debug("cache hit")
		return false, nil
	}

	ran, err, _ := m.group.Do(path, func() (any, error) {
		return m.materialize(ctx, path, produce)
	})
	if err != nil {
		return false, err
	}

	return ran.(bool), nil
}

func (m *Manager) materialize(ctx context.Context, path string, produce Producer) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return false, diagnostic.IO(filepath.Dir(path), "creating cache directory", err)
	}

	lck, err := m.lock(ctx, path+lockExt)
	if err != nil {
		return false, err
	}

	defer func() {
		if err := lck.Unlock(); err != nil {
			m.log.WithError(err).WithField("path", path).Warn("releasing cache lock")
		}
	}()

	// Another process may have published while we waited.
	if m.Exists(path) {
		m.log.WithField("path", path).Debug("cache published by another build")
		return false, nil
	}

	m.log.WithField("path", path).Debug("cache miss")

	size, err := m.publish(path, produce)
	if err != nil {
		return false, err
	}

	m.log.WithFields(logrus.Fields{
		"path": path,
		"size": humanize.Bytes(uint64(size)),
	}).Info("cache file published")

	return true, nil
}

// lock takes the exclusive lock file, polling until ctx is done.
func (m *Manager) lock(ctx context.Context, lockPath string) (*fslock.Lock, error) {
	lck := fslock.New(lockPath)

	for {
		err := lck.TryLock()
		if err == nil {
			return lck, nil
		}

		if !errors.Is(err, fslock.ErrLocked) {
			return nil, diagnostic.IO(lockPath, "locking cache file", err)
		}

		m.log.WithField("lock", lockPath).Debug("waiting for cache lock")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for cache lock %s: %w", lockPath, ctx.Err())
		case <-time.After(m.pollInterval):
		}
	}
}

// publish runs produce into a unique temporary file and renames it to path.
func (m *Manager) publish(path string, produce Producer) (int64, error) {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return 0, diagnostic.IO(tmp, "creating temporary cache file", err)
	}

	published := false

	defer func() {
		if !published {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err := produce(f); err != nil {
		return 0, err
	}

	if err := f.Sync(); err != nil {
		return 0, diagnostic.IO(tmp, "syncing temporary cache file", err)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, diagnostic.IO(tmp, "stat temporary cache file", err)
	}

	if info.Size() == 0 {
		return 0, diagnostic.Formatf(path, 0, "producer wrote an empty cache file")
	}

	if err := f.Close(); err != nil {
		return 0, diagnostic.IO(tmp, "closing temporary cache file", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		published = true // already cleaned up

		return 0, diagnostic.IO(path, "publishing cache file", err)
	}

	published = true

	return info.Size(), nil
}
