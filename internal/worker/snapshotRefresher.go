package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"geo_feedback/pkg/logx"
)

const defaultSpec = "@every 10m"

type SnapshotService interface {
	RefreshSnapshot(ctx context.Context) (int, error)
}

// SnapshotRefresher по расписанию cron перечитывает рынки и
// перестраивает индекс поиска по радиусу.
type SnapshotRefresher struct {
	service SnapshotService
	spec    string
	timeout time.Duration

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewSnapshotRefresher(service SnapshotService) *SnapshotRefresher {
	return &SnapshotRefresher{
		service: service,
		spec:    defaultSpec,
		timeout: time.Minute,
	}
}

func (w *SnapshotRefresher) WithSpec(spec string) *SnapshotRefresher {
	if spec != "" {
		w.spec = spec
	}
	return w
}

func (w *SnapshotRefresher) WithTimeout(timeout time.Duration) *SnapshotRefresher {
	w.timeout = timeout
	return w
}

func (w *SnapshotRefresher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("refresher is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("snapshot refresher stopped", logx.Error(err))
		}
	}()

	return nil
}

func (w *SnapshotRefresher) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *SnapshotRefresher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

// Run обновляет снимок сразу и затем по расписанию до отмены контекста.
func (w *SnapshotRefresher) Run(ctx context.Context) error {
	scheduler := cron.New()

	if _, err := scheduler.AddFunc(w.spec, func() { w.refresh(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", w.spec, err)
	}

	logger(ctx).Info("snapshot refresher started", "spec", w.spec)

	w.refresh(ctx)
	scheduler.Start()

	<-ctx.Done()
	<-scheduler.Stop().Done()

	logger(ctx).Info("snapshot refresher stopped")

	return ctx.Err()
}

func (w *SnapshotRefresher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	refreshCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()

	count, err := w.service.RefreshSnapshot(refreshCtx)
	if err != nil {
		logger(ctx).Error("failed to refresh market snapshot", logx.Error(err))
		return
	}

	logger(ctx).Info("market snapshot refreshed",
		"markets", count,
		logx.FieldDurationMs, time.Since(start).Milliseconds(),
	)
}
