package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/konivrer-insights/internal/analytics"
	"github.com/ramonehamilton/konivrer-insights/internal/logging"
)

// Config controls how often a Refresher may rebuild the store.
type Config struct {
	// Debounce is the quiet period after the last file event before refreshing.
	Debounce time.Duration

	// MinInterval is the minimum time between two refreshes. Zero disables throttling.
	MinInterval time.Duration
}

// DefaultConfig returns the default refresh settings.
func DefaultConfig() Config {
	return Config{
		Debounce:    2 * time.Second,
		MinInterval: 30 * time.Second,
	}
}

// Refresher loads history from a Source, runs the engine and publishes the
// snapshot to a Store. Refreshes never overlap.
type Refresher struct {
	engine  *analytics.Engine
	store   *analytics.Store
	source  Source
	config  Config
	limiter *rate.Limiter
	logger  *logrus.Entry

	mu        sync.Mutex
	refreshes atomic.Int64
	failures  atomic.Int64
}

// NewRefresher creates a refresher. A nil logger discards output.
func NewRefresher(engine *analytics.Engine, store *analytics.Store, source Source, config Config, logger *logrus.Entry) *Refresher {
	limit := rate.Inf
	if config.MinInterval > 0 {
		limit = rate.Every(config.MinInterval)
	}
	if logger == nil {
		logger = logrus.NewEntry(logging.Discard())
	}

	return &Refresher{
		engine:  engine,
		store:   store,
		source:  source,
		config:  config,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// Refresh rebuilds the store once, waiting for the rate limiter first. The
// store keeps its previous snapshot when loading or analysis fails.
func (r *Refresher) Refresh(ctx context.Context) (uuid.UUID, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("wait for refresh slot: %w", err)
	}
	return r.refresh(ctx)
}

// tryRefresh refreshes only if a slot is free right now. Otherwise it leaves
// the limiter untouched and returns how long until the next slot.
func (r *Refresher) tryRefresh(ctx context.Context) (time.Duration, error) {
	reservation := r.limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return delay, nil
	}
	_, err := r.refresh(ctx)
	return 0, err
}

func (r *Refresher) refresh(ctx context.Context) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, err := r.source.Load(ctx)
	if err != nil {
		r.failures.Add(1)
		return uuid.Nil, fmt.Errorf("load history: %w", err)
	}

	snapshot, err := r.engine.Run(ctx, history)
	if err != nil {
		r.failures.Add(1)
		return uuid.Nil, err
	}

	r.store.Replace(snapshot)
	r.refreshes.Add(1)
	r.logger.WithFields(logrus.Fields{
		"run_id":  snapshot.RunID,
		"matches": len(history.Matches),
	}).Info("Store refreshed")

	return snapshot.RunID, nil
}

// Refreshes returns the number of successful refreshes.
func (r *Refresher) Refreshes() int64 {
	return r.refreshes.Load()
}

// Failures returns the number of failed refreshes.
func (r *Refresher) Failures() int64 {
	return r.failures.Load()
}

// Watch refreshes whenever the file at path changes, until ctx is done.
// The parent directory is watched so editors that replace the file are seen.
func (r *Refresher) Watch(ctx context.Context, path string) (err error) {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	// Stopped until the first relevant event arrives.
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	r.logger.WithField("path", path).Info("Watching history file")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			r.logger.WithField("op", event.Op.String()).Debug("History file changed")
			debounce.Reset(r.config.Debounce)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.WithError(werr).Warn("File watcher error")

		case <-debounce.C:
			// A throttled refresh is re-armed so events keep draining meanwhile.
			delay, err := r.tryRefresh(ctx)
			if delay > 0 {
				r.logger.WithField("delay", delay.Round(time.Millisecond)).Debug("Refresh throttled")
				debounce.Reset(delay)
				continue
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return ctx.Err()
				}
				r.logger.WithError(err).Error("Refresh after file change failed")
			}
		}
	}
}

// Schedule refreshes on the given cron spec until ctx is done.
func (r *Refresher) Schedule(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLogger(cron.PrintfLogger(r.logger)))

	_, err := c.AddFunc(spec, func() {
		if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
			r.logger.WithError(err).Error("Scheduled refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh %q: %w", spec, err)
	}

	c.Start()
	r.logger.WithField("schedule", spec).Info("Scheduled refresh started")

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
