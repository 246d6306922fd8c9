package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"sceneforge/internal/daemon"
	"sceneforge/internal/history"
	"sceneforge/internal/logging"
	"sceneforge/internal/logs"
	"sceneforge/internal/render"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.WithComponent(logger, "ipc"), ctx: ctx}
	if err := rpcServer.RegisterName("Sceneforge", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func convertRecord(rec *history.Record) HistoryRecord {
	out := HistoryRecord{
		ID:           rec.ID,
		JobID:        rec.JobID,
		Class:        rec.Class,
		SceneName:    rec.SceneName,
		EntryPoint:   rec.EntryPoint,
		Quality:      rec.Quality,
		FrameRate:    rec.FrameRate,
		Format:       rec.Format,
		Command:      rec.Command,
		State:        string(rec.State),
		ArtifactPath: rec.ArtifactPath,
		ErrorMessage: rec.ErrorMessage,
	}
	if !rec.CreatedAt.IsZero() {
		out.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	if !rec.CompletedAt.IsZero() {
		out.CompletedAt = rec.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func convertJob(job *render.Job) JobResponse {
	return JobResponse{
		JobID:      job.ID,
		Class:      string(job.Class),
		EntryPoint: job.EntryPoint,
		ScriptPath: job.ScriptPath,
		Command:    job.Command,
	}
}

func toRenderRequest(req JobRequest) render.Request {
	return render.Request{
		Source:     req.Source,
		Quality:    req.Quality,
		FrameRate:  req.FrameRate,
		Format:     req.Format,
		Accelerate: req.Accelerate,
	}
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.logger.Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.ShellRunning = status.ShellRunning
	resp.HistoryDBPath = status.HistoryDBPath
	resp.LockPath = status.LockFilePath
	resp.SocketPath = status.SocketPath
	resp.PID = status.PID
	resp.JobStates = make(map[string]string, len(status.JobStates))
	for class, state := range status.JobStates {
		resp.JobStates[string(class)] = state.String()
	}
	resp.GPU = GPUStatus{
		Available:   status.GPU.Available,
		Discrete:    status.GPU.Discrete,
		Description: status.GPU.Description,
	}
	resp.Dependencies = make([]DependencyStatus, 0, len(status.Dependencies))
	for _, dep := range status.Dependencies {
		resp.Dependencies = append(resp.Dependencies, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	resp.History = HistorySummary{
		Total:     status.History.Total,
		Running:   status.History.Running,
		Succeeded: status.History.Succeeded,
		Failed:    status.History.Failed,
		TimedOut:  status.History.TimedOut,
		Cancelled: status.History.Cancelled,
	}
	return nil
}

func (s *service) Render(req RenderRequest, resp *RenderResponse) error {
	job, err := s.daemon.Render(s.ctx, toRenderRequest(req.Job))
	if err != nil {
		return err
	}
	resp.Job = convertJob(job)
	return nil
}

func (s *service) Preview(req PreviewRequest, resp *PreviewResponse) error {
	job, err := s.daemon.Preview(s.ctx, toRenderRequest(req.Job))
	if err != nil {
		return err
	}
	resp.Job = convertJob(job)
	return nil
}

func (s *service) Cancel(_ CancelRequest, resp *CancelResponse) error {
	s.logger.Debug("job cancel requested")
	active, err := s.daemon.CancelJobs(s.ctx)
	if err != nil {
		return err
	}
	resp.WasActive = active
	return nil
}

func (s *service) TerminalRead(_ TerminalReadRequest, resp *TerminalReadResponse) error {
	resp.Output = s.daemon.TerminalOutput()
	return nil
}

func (s *service) TerminalWrite(req TerminalWriteRequest, _ *TerminalWriteResponse) error {
	return s.daemon.TerminalWrite(req.Data)
}

func (s *service) TerminalResize(req TerminalResizeRequest, _ *TerminalResizeResponse) error {
	if req.Cols <= 0 || req.Rows <= 0 {
		return fmt.Errorf("invalid terminal geometry %dx%d", req.Cols, req.Rows)
	}
	return s.daemon.TerminalResize(req.Cols, req.Rows)
}

func (s *service) HistoryList(req HistoryListRequest, resp *HistoryListResponse) error {
	records, err := s.daemon.HistoryList(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Records = make([]HistoryRecord, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		resp.Records = append(resp.Records, convertRecord(rec))
	}
	return nil
}

func (s *service) HistoryClear(_ HistoryClearRequest, resp *HistoryClearResponse) error {
	s.logger.Debug("history clear requested")
	if err := s.daemon.HistoryClear(s.ctx); err != nil {
		return err
	}
	resp.Cleared = true
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
