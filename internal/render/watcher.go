package render

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sceneforge/internal/config"
	"sceneforge/internal/fileutil"
	"sceneforge/internal/history"
	"sceneforge/internal/logging"
	"sceneforge/internal/notifications"
	"sceneforge/internal/postprocess"
	"sceneforge/internal/scene"
	"sceneforge/internal/session"
)

// watcherTimings collects the polling cadence knobs in durations.
type watcherTimings struct {
	poll         time.Duration
	errorEvery   int
	startupGrace time.Duration
	settle       time.Duration
	probeGap     time.Duration
	timeout      time.Duration
}

func timingsFromConfig(cfg *config.Config) watcherTimings {
	return watcherTimings{
		poll:         time.Duration(cfg.Watcher.PollInterval) * time.Second,
		errorEvery:   cfg.Watcher.ErrorCheckEvery,
		startupGrace: time.Duration(cfg.Watcher.StartupGrace) * time.Second,
		settle:       time.Duration(cfg.Watcher.SettleDelay) * time.Second,
		probeGap:     time.Duration(cfg.Watcher.StabilityProbeGap) * time.Second,
		timeout:      time.Duration(cfg.Watcher.Timeout) * time.Second,
	}
}

// watcher polls for the outcome of one dispatched job. The session offers no
// process-exit signal for the foreground command, so text output and the
// media directory are the only observable completion channels.
type watcher struct {
	job       *Job
	mediaRoot string
	timings   watcherTimings
	guard     *Guard
	diag      *session.DiagnosticBuffer
	processor *postprocess.Processor
	store     *history.Store
	notifier  notifications.Service
	logger    *slog.Logger
	onDone    func()
}

func (w *watcher) run(ctx context.Context) {
	defer w.onDone()
	outcome, artifact, detail := w.watch(ctx)
	w.conclude(ctx, outcome, artifact, detail)
}

// watch drives the poll loop to a terminal outcome. The recover keeps the
// cleanup guarantee intact even if a poll body faults unexpectedly.
func (w *watcher) watch(ctx context.Context) (outcome Outcome, artifact, detail string) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("watcher fault", logging.Any("panic", r))
			outcome, artifact, detail = OutcomeFailed, "", fmt.Sprintf("internal watcher fault: %v", r)
		}
	}()

	// Give the command a moment to start producing output before error
	// detection begins.
	if !w.sleep(ctx, w.timings.startupGrace) {
		return OutcomeCancelled, "", ""
	}

	deadline := time.Now().Add(w.timings.timeout)
	for tick := 1; time.Now().Before(deadline); tick++ {
		// The slot reset to idle means Stop was called; held by another job
		// means this watcher was superseded after a Stop. Either way the job
		// is over.
		if !w.guard.Owns(w.job.Class, w.job.ID) {
			return OutcomeCancelled, "", ""
		}

		if tick%w.timings.errorEvery == 0 {
			if w.diag.Contains(interruptMarkers...) {
				return OutcomeCancelled, "", ""
			}
			// Error signatures win over a stabilized artifact in the same
			// window, so this check stays ahead of the filesystem scan.
			if match, found := w.diag.Scan(errorSignatures); found {
				return OutcomeFailed, "", match.Snippet
			}
		}

		if candidate := w.findCandidate(); candidate != "" {
			if size, stable := w.confirmStable(ctx, candidate); stable && size > 0 {
				return OutcomeSucceeded, candidate, ""
			}
			// Still being written; re-evaluate on the next tick.
		}

		if !w.sleep(ctx, w.timings.poll) {
			return OutcomeCancelled, "", ""
		}
	}

	return OutcomeTimedOut, "", ""
}

// findCandidate walks the renderer's output trees for the first accepted
// artifact, skipping partial movie directories.
func (w *watcher) findCandidate() string {
	for _, sub := range []string{"videos", "images"} {
		root := filepath.Join(w.mediaRoot, sub)
		var found string
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if strings.Contains(path, scene.PartialMarker) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.Contains(path, scene.PartialMarker) {
				return nil
			}
			if scene.AcceptedArtifact(d.Name()) {
				found = path
				return filepath.SkipAll
			}
			return nil
		})
		if err == nil && found != "" {
			return found
		}
	}
	return ""
}

// confirmStable waits the settle delay, then samples the candidate's size
// twice. Equal non-zero samples mean the renderer has finished writing.
func (w *watcher) confirmStable(ctx context.Context, path string) (int64, bool) {
	if !w.sleep(ctx, w.timings.settle) {
		return 0, false
	}
	first, err := fileSize(path)
	if err != nil {
		return 0, false
	}
	if !w.sleep(ctx, w.timings.probeGap) {
		return 0, false
	}
	second, err := fileSize(path)
	if err != nil {
		return 0, false
	}
	if first != second {
		return 0, false
	}
	return second, true
}

// conclude performs the terminal-state obligations: post-processing on
// success, guard reset, temp script removal, history record, notification.
func (w *watcher) conclude(ctx context.Context, outcome Outcome, artifact, detail string) {
	finalPath := ""
	if outcome == OutcomeSucceeded {
		var err error
		switch w.job.Class {
		case ClassPreview:
			finalPath, err = w.processor.FinalizePreview(ctx, artifact, w.mediaRoot)
		default:
			finalPath, err = w.processor.FinalizeRender(ctx, artifact, w.mediaRoot)
		}
		if err != nil {
			outcome = OutcomeFailed
			detail = fmt.Sprintf("post-processing: %v", err)
		}
	}

	w.guard.Release(w.job.Class, w.job.ID)

	if err := fileutil.RemoveIfExists(w.job.ScriptPath); err != nil {
		w.logger.Warn("temp script cleanup failed",
			logging.String("path", w.job.ScriptPath), logging.Error(err))
	}

	if w.store != nil {
		if err := w.store.Finish(ctx, w.job.ID, outcome.historyState(), finalPath, detail); err != nil {
			w.logger.Warn("history update failed",
				logging.String(logging.FieldJobID, w.job.ID), logging.Error(err))
		}
	}

	w.notify(ctx, outcome, finalPath, detail)

	w.logger.Info("job concluded",
		logging.String(logging.FieldJobClass, string(w.job.Class)),
		logging.String("outcome", string(outcome)),
		logging.String("artifact", finalPath))
}

func (w *watcher) notify(ctx context.Context, outcome Outcome, finalPath, detail string) {
	if w.notifier == nil {
		return
	}
	class, entry := string(w.job.Class), w.job.EntryPoint
	var err error
	switch outcome {
	case OutcomeSucceeded:
		err = w.notifier.NotifyJobSucceeded(ctx, class, entry, finalPath)
		if err == nil {
			err = w.notifier.NotifySavePrompt(ctx, entry, finalPath)
		}
	case OutcomeFailed:
		err = w.notifier.NotifyJobFailed(ctx, class, entry, detail)
	case OutcomeTimedOut:
		err = w.notifier.NotifyJobTimedOut(ctx, class, entry, w.timings.timeout)
	case OutcomeCancelled:
		err = w.notifier.NotifyJobCancelled(ctx, class, entry)
	}
	if err != nil {
		w.logger.Warn("notification failed", logging.Error(err))
	}
}

// sleep waits for d or until the context is cancelled, reporting whether the
// full duration elapsed.
func (w *watcher) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (o Outcome) historyState() history.State {
	switch o {
	case OutcomeSucceeded:
		return history.StateSucceeded
	case OutcomeTimedOut:
		return history.StateTimedOut
	case OutcomeCancelled:
		return history.StateCancelled
	default:
		return history.StateFailed
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
