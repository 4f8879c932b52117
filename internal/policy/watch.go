package policy

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 200 * time.Millisecond

// Watch syncs once and then re-syncs after each change to the seed file
// until ctx is cancelled. Bursts of events are debounced.
//
// The parent directory is watched rather than the file itself, so editors
// that save by rename-and-replace keep triggering syncs.
func (s *Syncer) Watch(ctx context.Context) error {
	if _, err := s.Sync(ctx); err != nil {
		s.logger.Error("policy: initial sync failed", slog.String("error", err.Error()))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(s.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	s.logger.Info("policy: watching", slog.String("path", target))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.logger.Info("policy: watcher stopped")
			return nil

		case <-fire:
			fire = nil
			if _, err := s.Sync(ctx); err != nil {
				s.logger.Warn("policy: sync failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("policy: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
