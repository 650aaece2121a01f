package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ridepulse/internal/infrastructure"
)

// Reloader is the part of DashboardService the watcher drives.
type Reloader interface {
	Path() string
	Reload(ctx context.Context, trigger string) (*DatasetSummary, error)
}

type fileState struct {
	exists  bool
	modTime time.Time
	size    int64
}

func (a fileState) changed(b fileState) bool {
	return a.exists != b.exists || a.size != b.size || !a.modTime.Equal(b.modTime)
}

// DatasetWatcher polls the dataset file and reloads it when its modification
// time or size changes, so connected dashboards receive a dataset:reloaded
// event without anyone calling the reload endpoint.
type DatasetWatcher struct {
	target   Reloader
	interval time.Duration
	logger   *slog.Logger

	last    fileState
	primed  bool
	reloads int
}

// NewDatasetWatcher creates a watcher polling every interval.
func NewDatasetWatcher(target Reloader, interval time.Duration, logger *slog.Logger) *DatasetWatcher {
	return &DatasetWatcher{
		target:   target,
		interval: interval,
		logger:   infrastructure.WithComponent(logger, "dataset_watcher"),
	}
}

// Run polls until ctx is done. The first observation is the baseline and
// never triggers a reload.
func (w *DatasetWatcher) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.logger.Info("Dataset watcher disabled")
		return
	}

	w.logger.Info("Dataset watcher started",
		slog.String("path", w.target.Path()),
		slog.Duration("interval", w.interval))

	w.Check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Dataset watcher stopped", slog.Int("reloads", w.reloads))
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check compares the file with the previous observation and reloads on a
// change. It reports whether a reload was attempted. A file that disappears
// is reloaded too, which publishes a dataset:error event.
func (w *DatasetWatcher) Check(ctx context.Context) bool {
	current := stat(w.target.Path())
	if !w.primed {
		w.last, w.primed = current, true
		return false
	}
	if !current.changed(w.last) {
		return false
	}
	w.last = current

	ctx = infrastructure.EnsureTraceID(ctx)
	w.logger.InfoContext(ctx, "Dataset file changed",
		slog.Bool("exists", current.exists),
		slog.Time("mod_time", current.modTime),
		slog.Int64("size", current.size))

	w.reloads++
	if _, err := w.target.Reload(ctx, "watcher"); err != nil {
		w.logger.WarnContext(ctx, "Dataset reload after change failed",
			slog.String("error", err.Error()))
	}
	return true
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, modTime: info.ModTime(), size: info.Size()}
}
