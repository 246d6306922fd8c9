package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sceneforge/internal/config"
	"sceneforge/internal/history"
	"sceneforge/internal/logging"
	"sceneforge/internal/notifications"
	"sceneforge/internal/postprocess"
	"sceneforge/internal/scene"
	"sceneforge/internal/services"
	"sceneforge/internal/session"
	"sceneforge/internal/settings"
)

// Request carries the job parameters accepted from the UI boundary.
type Request struct {
	Class      Class
	Source     string
	Quality    string
	FrameRate  int
	Format     string
	Accelerate bool
}

// Job describes a dispatched job.
type Job struct {
	ID         string
	Class      Class
	EntryPoint string
	ScriptPath string
	Command    string
	StartedAt  time.Time
}

// Dispatcher validates job requests, builds the renderer command line, hands
// it to the shell session, and spawns one completion watcher per job.
type Dispatcher struct {
	cfg       *config.Config
	session   *session.Session
	guard     *Guard
	store     *history.Store
	notifier  notifications.Service
	processor *postprocess.Processor
	logger    *slog.Logger

	mu       sync.Mutex
	watchers map[Class]watcherHandle
	wg       sync.WaitGroup
}

// watcherHandle ties a watcher's cancel func to the job it serves, so a
// superseding dispatch for the same class can tell old from new.
type watcherHandle struct {
	jobID  string
	cancel context.CancelFunc
}

// NewDispatcher wires a dispatcher. The session's liveness backs the guard's
// stale-flag reconciliation for both classes.
func NewDispatcher(cfg *config.Config, sess *session.Session, store *history.Store, notifier notifications.Service, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	guard := NewGuard()
	guard.SetLiveness(ClassRender, sess.Running)
	guard.SetLiveness(ClassPreview, sess.Running)
	return &Dispatcher{
		cfg:       cfg,
		session:   sess,
		guard:     guard,
		store:     store,
		notifier:  notifier,
		processor: postprocess.New(cfg, logger),
		logger:    logging.WithComponent(logger, "dispatcher"),
		watchers:  make(map[Class]watcherHandle),
	}
}

// Guard exposes the single-flight guard for status snapshots.
func (d *Dispatcher) Guard() *Guard { return d.guard }

// Processor exposes the post-processing pipeline, mainly for preview cleanup.
func (d *Dispatcher) Processor() *postprocess.Processor { return d.processor }

// Dispatch validates the request, admits it through the guard, writes the
// quoted command into the session, and spawns the completion watcher.
// Admission errors are returned synchronously; everything afterwards is
// reported through notifications and the history store.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Job, error) {
	if !req.Class.Valid() {
		return nil, services.Wrap(services.ErrValidation, "dispatcher", "dispatch",
			fmt.Sprintf("unknown job class %q", req.Class), nil)
	}

	source := scene.Sanitize(req.Source)
	entryPoint, err := scene.EntryPoint(source)
	if err != nil {
		return nil, err
	}

	if !d.session.Running() {
		return nil, services.Wrap(services.ErrConfiguration, "dispatcher", "dispatch",
			"shell session is not running", nil)
	}

	if err := d.guard.Acquire(req.Class); err != nil {
		return nil, err
	}
	admitted := false
	scriptPath := ""
	defer func() {
		if admitted {
			return
		}
		d.guard.Release(req.Class, "")
		if scriptPath != "" {
			_ = os.Remove(scriptPath)
		}
	}()

	mediaRoot := d.mediaRoot(req.Class)
	scriptPath, err = d.writeScript(req.Class, mediaRoot, source)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "dispatcher", "dispatch",
			"write job script", err)
	}

	userSettings, err := settings.Load(d.cfg.Paths.SettingsFile)
	if err != nil {
		d.logger.Warn("settings unreadable, using defaults", logging.Error(err))
	}

	frameRate := req.FrameRate
	if frameRate <= 0 {
		frameRate = d.cfg.Renderer.DefaultFrameRate
	}
	quality := req.Quality
	if strings.TrimSpace(quality) == "" {
		quality = d.cfg.Renderer.DefaultQuality
	}

	spec := commandSpec{
		Binary:       d.cfg.RendererBinary(),
		ScriptPath:   scriptPath,
		EntryPoint:   entryPoint,
		QualityFlag:  scene.QualityFlag(quality),
		MediaDir:     mediaRoot,
		FrameRate:    frameRate,
		Format:       req.Format,
		DisableCache: userSettings.DisableCache,
		ProgressBar:  true,
		Accelerated:  req.Accelerate,
	}
	line := spec.line()

	// Fresh detection window: stale errors from a previous job must not leak
	// into this job's scans.
	d.session.Diagnostics().Clear()

	if err := d.session.WriteLine("clear"); err != nil {
		return nil, services.Wrap(services.ErrTransient, "dispatcher", "dispatch",
			"write screen clear", err)
	}
	if err := d.session.WriteLine(line); err != nil {
		return nil, services.Wrap(services.ErrTransient, "dispatcher", "dispatch",
			"write command", err)
	}

	job := &Job{
		ID:         uuid.NewString(),
		Class:      req.Class,
		EntryPoint: entryPoint,
		ScriptPath: scriptPath,
		Command:    line,
		StartedAt:  time.Now(),
	}

	if d.store != nil {
		record, err := d.store.Begin(ctx, history.NewJob{
			Class:      string(req.Class),
			SceneName:  entryPoint,
			EntryPoint: entryPoint,
			Quality:    quality,
			FrameRate:  frameRate,
			Format:     spec.Format,
			Command:    line,
		})
		if err != nil {
			d.logger.Warn("history insert failed", logging.Error(err))
		} else {
			job.ID = record.JobID
		}
	}

	d.guard.MarkWatching(req.Class, job.ID)
	admitted = true

	d.startWatcher(job, mediaRoot)

	if err := d.notifier.NotifyJobStarted(ctx, string(req.Class), entryPoint); err != nil {
		d.logger.Warn("start notification failed", logging.Error(err))
	}

	d.logger.Info("job dispatched",
		logging.String(logging.FieldJobClass, string(req.Class)),
		logging.String("entry_point", entryPoint),
		logging.String("command", line))
	return job, nil
}

// Stop cancels any active job: both guard flags are reset unconditionally
// and an interrupt is delivered to the session best-effort. Watchers observe
// the reset on their next poll tick. Idempotent when nothing is active.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.guard.ReleaseAll()
	if err := d.session.Interrupt(); err != nil {
		d.logger.Warn("interrupt delivery failed", logging.Error(err))
	}
	d.logger.Info("stop requested, job flags reset")
	return nil
}

// Shutdown cancels all watcher contexts and waits for them to conclude.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	for _, handle := range d.watchers {
		handle.cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
	d.processor.SweepPreviews()
}

func (d *Dispatcher) startWatcher(job *Job, mediaRoot string) {
	ctx, cancel := context.WithCancel(context.Background())

	d.mu.Lock()
	// A watcher left over from a stopped job may still be winding down; cut
	// it off before the slot is handed to the new job.
	if prev, ok := d.watchers[job.Class]; ok {
		prev.cancel()
	}
	d.watchers[job.Class] = watcherHandle{jobID: job.ID, cancel: cancel}
	d.mu.Unlock()

	w := &watcher{
		job:       job,
		mediaRoot: mediaRoot,
		timings:   timingsFromConfig(d.cfg),
		guard:     d.guard,
		diag:      d.session.Diagnostics(),
		processor: d.processor,
		store:     d.store,
		notifier:  d.notifier,
		logger:    logging.WithComponent(d.logger, "watcher"),
		onDone: func() {
			d.mu.Lock()
			if stored, ok := d.watchers[job.Class]; ok && stored.jobID == job.ID {
				stored.cancel()
				delete(d.watchers, job.Class)
			}
			d.mu.Unlock()
			d.wg.Done()
		},
	}

	d.wg.Add(1)
	go w.run(ctx)
}

func (d *Dispatcher) mediaRoot(class Class) string {
	if class == ClassPreview {
		return d.cfg.Paths.PreviewDir
	}
	return d.cfg.Paths.RenderDir
}

// writeScript persists the sanitized source as the job's temp script inside
// the class's media root.
func (d *Dispatcher) writeScript(class Class, mediaRoot, source string) (string, error) {
	if err := os.MkdirAll(mediaRoot, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("temp_%s_%d.py", class, time.Now().UnixMilli())
	path := filepath.Join(mediaRoot, name)
	body := scene.EnsureEncodingHeader(source)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
