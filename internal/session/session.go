package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"sceneforge/internal/logging"
)

// Options configures the persistent shell session.
type Options struct {
	// Shell is the command started inside the PTY, e.g. /bin/bash.
	Shell string
	// WorkDir is the directory the session changes into on startup.
	WorkDir string
	// ActivateScript, when non-empty, is sourced on startup to put the
	// renderer's virtual environment on PATH.
	ActivateScript string
	// Cols and Rows set the initial terminal geometry.
	Cols int
	Rows int
	// DiagnosticCapacity bounds the diagnostic ring buffer.
	DiagnosticCapacity int
	// DisablePTY forces the pipe fallback. Used in tests and on hosts where
	// PTY allocation fails.
	DisablePTY bool
	// SetupSettle is the pause between init keystrokes and the buffer reset
	// that hides the setup transcript. Tests shorten it.
	SetupSettle time.Duration

	Logger *slog.Logger
}

// Session owns one long-lived interactive shell and the two buffers fed by its
// reader loop. All jobs share the session; it is created once at daemon
// startup and destroyed at process exit.
type Session struct {
	opts    Options
	logger  *slog.Logger
	display *DisplayBuffer
	diag    *DiagnosticBuffer

	mu      sync.Mutex
	cmd     *exec.Cmd
	ptmx    *os.File
	stdin   io.WriteCloser
	pgid    int
	started bool
	done    chan struct{}
}

// New constructs a session; Start actually spawns the shell.
func New(opts Options) *Session {
	if opts.Shell == "" {
		opts.Shell = "/bin/bash"
	}
	if opts.Cols <= 0 {
		opts.Cols = 120
	}
	if opts.Rows <= 0 {
		opts.Rows = 30
	}
	if opts.SetupSettle <= 0 {
		opts.SetupSettle = 500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		opts:    opts,
		logger:  logging.WithComponent(logger, "session"),
		display: NewDisplayBuffer(),
		diag:    NewDiagnosticBuffer(opts.DiagnosticCapacity),
	}
}

// Display returns the UI-facing drain buffer.
func (s *Session) Display() *DisplayBuffer { return s.display }

// Diagnostics returns the bounded scan buffer.
func (s *Session) Diagnostics() *DiagnosticBuffer { return s.diag }

// Running reports whether the underlying shell process is alive.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// PTYActive reports whether the session runs on a real PTY rather than the
// pipe fallback.
func (s *Session) PTYActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ptmx != nil
}

// Start spawns the shell if it is not already running. Idempotent. The reader
// loop begins appending combined output to both buffers; the init handshake
// (cd, venv activation, screen clear) runs before both buffers are reset so
// the setup transcript stays invisible to the first job.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		select {
		case <-s.done:
			// Shell exited; fall through and respawn.
			s.started = false
		default:
			s.mu.Unlock()
			return nil
		}
	}

	cmd := exec.CommandContext(ctx, s.opts.Shell)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "FORCE_COLOR=1", "PYTHONUNBUFFERED=1")

	var reader io.Reader
	if !s.opts.DisablePTY {
		// cmd.Stdin/Stdout/Stderr stay nil: creack/pty assigns the tty to
		// all three, and fd 0 must be the tty for Setctty.
		ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
			Rows: uint16(s.opts.Rows),
			Cols: uint16(s.opts.Cols),
		})
		if err == nil {
			s.ptmx = ptmx
			reader = ptmx
		} else {
			s.logger.Warn("pty allocation failed, using pipe fallback", logging.Error(err))
		}
	}

	if reader == nil {
		cmd = exec.CommandContext(ctx, s.opts.Shell)
		cmd.Env = append(os.Environ(), "TERM=dumb", "PYTHONUNBUFFERED=1")
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		stdin, err := cmd.StdinPipe()
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("open shell stdin: %w", err)
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("open shell stdout: %w", err)
		}
		cmd.Stderr = cmd.Stdout
		if err := cmd.Start(); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("start shell %s: %w", s.opts.Shell, err)
		}
		s.stdin = stdin
		reader = stdout
	}

	s.cmd = cmd
	s.pgid = 0
	if cmd.Process != nil && cmd.Process.Pid > 0 {
		if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
			s.pgid = pgid
		}
	}
	s.started = true
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go s.readLoop(reader)
	go func() {
		_ = cmd.Wait()
		close(done)
	}()

	s.initEnvironment()
	return nil
}

// readLoop continuously drains session output into both buffers for the life
// of the shell process.
func (s *Session) readLoop(r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			s.display.Append(chunk)
			s.diag.Append(chunk)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				s.logger.Debug("reader loop ended", logging.Error(err))
			}
			return
		}
	}
}

func (s *Session) initEnvironment() {
	if s.opts.WorkDir != "" {
		_ = s.WriteLine("cd " + quoteIfNeeded(s.opts.WorkDir))
		time.Sleep(s.opts.SetupSettle / 2)
	}
	if s.opts.ActivateScript != "" {
		if _, err := os.Stat(s.opts.ActivateScript); err == nil {
			_ = s.WriteLine("source " + quoteIfNeeded(s.opts.ActivateScript))
			time.Sleep(s.opts.SetupSettle)
		} else {
			s.logger.Warn("venv activate script not found", logging.String("path", s.opts.ActivateScript))
		}
	}
	_ = s.WriteLine("clear")
	time.Sleep(s.opts.SetupSettle / 2)

	// Hide the setup transcript from the first real job.
	s.display.Reset()
	s.diag.Clear()
}

// Write injects raw bytes (including control characters such as \x03) into
// the session input. Safe against the concurrent reader loop; callers must
// serialize their own writes, which the dispatcher's single-flight guard
// provides.
func (s *Session) Write(data string) error {
	s.mu.Lock()
	ptmx, stdin := s.ptmx, s.stdin
	s.mu.Unlock()

	switch {
	case ptmx != nil:
		_, err := ptmx.WriteString(data)
		return err
	case stdin != nil:
		_, err := io.WriteString(stdin, data)
		return err
	default:
		return errors.New("session not started")
	}
}

// WriteLine writes data followed by the session's line-ending convention.
func (s *Session) WriteLine(line string) error {
	return s.Write(line + s.LineEnding())
}

// LineEnding returns the accept-line sequence for the active backend.
func (s *Session) LineEnding() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ptmx != nil {
		return "\r"
	}
	return "\n"
}

// Interrupt delivers Ctrl-C to the session's foreground job. Best-effort.
func (s *Session) Interrupt() error {
	s.mu.Lock()
	ptmx, pgid := s.ptmx, s.pgid
	s.mu.Unlock()

	if ptmx != nil {
		_, err := ptmx.WriteString("\x03")
		return err
	}
	if pgid > 0 {
		return unix.Kill(-pgid, unix.SIGINT)
	}
	return errors.New("session not started")
}

// Resize adjusts the terminal geometry. Best-effort; a no-op in pipe mode.
func (s *Session) Resize(cols, rows int) error {
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid terminal size %dx%d", cols, rows)
	}
	s.mu.Lock()
	ptmx := s.ptmx
	s.mu.Unlock()
	if ptmx == nil {
		return nil
	}
	return pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// Close terminates the shell: SIGTERM first, SIGKILL after a short grace.
func (s *Session) Close() error {
	s.mu.Lock()
	cmd, ptmx, stdin, pgid, done := s.cmd, s.ptmx, s.stdin, s.pgid, s.done
	s.cmd = nil
	s.ptmx = nil
	s.stdin = nil
	s.started = false
	s.mu.Unlock()

	if ptmx != nil {
		_ = ptmx.Close()
	}
	if stdin != nil {
		_ = stdin.Close()
	}
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	sendSignal(cmd.Process.Pid, pgid, unix.SIGTERM)
	if done != nil {
		select {
		case <-done:
			return nil
		case <-time.After(2 * time.Second):
		}
	}
	sendSignal(cmd.Process.Pid, pgid, unix.SIGKILL)
	return nil
}

func sendSignal(pid, pgid int, sig unix.Signal) {
	if pgid > 0 {
		if err := unix.Kill(-pgid, sig); err == nil {
			return
		}
	}
	_ = unix.Kill(pid, sig)
}

func quoteIfNeeded(arg string) string {
	for _, r := range arg {
		if r == ' ' || r == '\t' {
			return `"` + arg + `"`
		}
	}
	return arg
}
