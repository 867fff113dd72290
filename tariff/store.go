package tariff

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

type OnReload func(ds *Dataset, err error)

// Store publishes the current dataset. Reloads build a new Dataset and
// swap it in, readers keep whatever pointer they already hold.
type Store struct {
	path     string
	logger   *slog.Logger
	current  atomic.Pointer[Dataset]
	mutex    sync.Mutex
	onReload []OnReload
}

// NewStore loads the dataset at path. The initial load must succeed.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:   path,
		logger: slog.Default().With("module", "tariff"),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticStore wraps an already loaded dataset, Reload is a no-op.
func NewStaticStore(ds *Dataset) *Store {
	s := &Store{logger: slog.Default().With("module", "tariff")}
	s.current.Store(ds)
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Dataset returns the current dataset, nil only for an empty static store.
func (s *Store) Dataset() *Dataset {
	return s.current.Load()
}

// OnReload registers a callback run after every reload attempt.
func (s *Store) OnReload(fn OnReload) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Reload reads the file again. On failure the previous dataset stays.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	ds, err := LoadFile(s.path)
	if err == nil {
		s.current.Store(ds)
		s.logger.Info("tariff dataset loaded",
			slog.String("path", s.path),
			slog.Int("fees", len(ds.Fees)),
			slog.Int("bessExemptions", len(ds.BessExemptions)))
		for _, d := range ds.Duplicates() {
			s.logger.Warn("tariff row is shadowed by an earlier row and will never match",
				slog.Int("row", d.Index),
				slog.Int("shadowedBy", d.ShadowedBy),
				slog.String("operator", d.Row.Operator),
				slog.String("voltage", d.Row.VoltageLevel))
		}
	} else {
		s.logger.Error("tariff dataset load failed", slog.String("path", s.path), slog.Any("error", err))
	}

	for _, fn := range s.onReload {
		fn(ds, err)
	}

	return err
}

// Watch reloads the dataset whenever its file is written or replaced,
// until ctx is done. The directory is watched since editors and deploy
// tools usually replace the file rather than write it in place.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return errors.New("tariff store has no file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create tariff watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	name := filepath.Clean(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != name {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					s.logger.Debug("tariff file changed", slog.String("op", event.Op.String()))
					_ = s.Reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("error watching tariff file", slog.Any("error", err))
			}
		}
	}()

	return nil
}
