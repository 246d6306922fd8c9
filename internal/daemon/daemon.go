package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"sceneforge/internal/config"
	"sceneforge/internal/deps"
	"sceneforge/internal/gpu"
	"sceneforge/internal/history"
	"sceneforge/internal/logging"
	"sceneforge/internal/notifications"
	"sceneforge/internal/render"
	"sceneforge/internal/session"
)

// Daemon owns the long-lived shell session and the job dispatcher, and
// enforces single-instance execution via a lock file.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *history.Store
	session    *session.Session
	dispatcher *render.Dispatcher
	logPath    string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	ShellRunning  bool
	JobStates     map[render.Class]render.State
	HistoryDBPath string
	LockFilePath  string
	SocketPath    string
	PID           int
	GPU           gpu.Info
	Dependencies  []deps.Status
	History       history.Summary
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *history.Store, sess *session.Session, dispatcher *render.Dispatcher, logger *slog.Logger, logPath string) (*Daemon, error) {
	if cfg == nil || store == nil || sess == nil || dispatcher == nil {
		return nil, errors.New("daemon requires config, store, session, and dispatcher")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "sceneforged.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "daemon"),
		store:      store,
		session:    sess,
		dispatcher: dispatcher,
		logPath:    logPath,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and spawns the shell session.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another sceneforge daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.session.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start shell session: %w", err)
	}

	// Rows left running by a previous process can never complete now.
	if closed, err := d.store.CloseStale(d.ctx); err != nil {
		d.logger.Warn("close stale history rows", logging.Error(err))
	} else if closed > 0 {
		d.logger.Info("closed stale history rows", logging.Int64("count", closed))
	}

	d.running.Store(true)
	d.logger.Info("sceneforge daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down watchers and the shell session and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.dispatcher.Shutdown()
	if err := d.session.Close(); err != nil {
		d.logger.Warn("close shell session", logging.Error(err))
	}
	if closed, err := d.store.CloseStale(context.Background()); err != nil {
		d.logger.Warn("close running history rows", logging.Error(err))
	} else if closed > 0 {
		d.logger.Info("marked running jobs as stopped", logging.Int64("count", closed))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("sceneforge daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Render dispatches a full-quality render job.
func (d *Daemon) Render(ctx context.Context, req render.Request) (*render.Job, error) {
	req.Class = render.ClassRender
	return d.dispatcher.Dispatch(ctx, req)
}

// Preview dispatches a preview job.
func (d *Daemon) Preview(ctx context.Context, req render.Request) (*render.Job, error) {
	req.Class = render.ClassPreview
	return d.dispatcher.Dispatch(ctx, req)
}

// CancelJobs stops any active job of either class. It reports whether a job
// was active when the cancel arrived.
func (d *Daemon) CancelJobs(ctx context.Context) (bool, error) {
	active := false
	for _, state := range d.dispatcher.Guard().Snapshot() {
		if state.Busy() {
			active = true
			break
		}
	}
	if err := d.dispatcher.Stop(ctx); err != nil {
		return active, err
	}
	return active, nil
}

// TerminalOutput drains pending shell output for the UI terminal.
func (d *Daemon) TerminalOutput() string {
	return d.session.Display().Drain()
}

// TerminalWrite forwards raw keystrokes to the shell session.
func (d *Daemon) TerminalWrite(data string) error {
	return d.session.Write(data)
}

// TerminalResize updates the PTY geometry.
func (d *Daemon) TerminalResize(cols, rows int) error {
	return d.session.Resize(cols, rows)
}

// HistoryList returns the most recent job records, newest first.
func (d *Daemon) HistoryList(ctx context.Context, limit int) ([]*history.Record, error) {
	if d.store == nil {
		return nil, errors.New("history store unavailable")
	}
	return d.store.List(ctx, limit)
}

// HistoryClear removes all job history records.
func (d *Daemon) HistoryClear(ctx context.Context) error {
	if d.store == nil {
		return errors.New("history store unavailable")
	}
	return d.store.Clear(ctx)
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notifications.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary, err := d.store.Summarize(ctx)
	if err != nil {
		d.logger.Warn("summarize history", logging.Error(err))
	}
	return Status{
		Running:       d.running.Load(),
		ShellRunning:  d.session.Running(),
		JobStates:     d.dispatcher.Guard().Snapshot(),
		HistoryDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
		SocketPath:    d.cfg.Paths.SocketPath,
		PID:           os.Getpid(),
		GPU:           gpu.Probe(ctx),
		Dependencies:  deps.Check(d.cfg),
		History:       summary,
	}
}
