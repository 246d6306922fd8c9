package ipc

// StartRequest triggers daemon startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// DependencyStatus describes availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
	Severity    string `json:"severity,omitempty"`
}

// GPUStatus describes the detected graphics adapter.
type GPUStatus struct {
	Available   bool   `json:"available"`
	Discrete    bool   `json:"discrete"`
	Description string `json:"description"`
}

// HistorySummary aggregates job history counts by state.
type HistorySummary struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	TimedOut  int `json:"timed_out"`
	Cancelled int `json:"cancelled"`
}

// StatusResponse represents combined daemon status information.
type StatusResponse struct {
	Running       bool               `json:"running"`
	ShellRunning  bool               `json:"shell_running"`
	JobStates     map[string]string  `json:"job_states,omitempty"`
	HistoryDBPath string             `json:"history_db_path,omitempty"`
	LockPath      string             `json:"lock_path,omitempty"`
	SocketPath    string             `json:"socket_path,omitempty"`
	PID           int                `json:"pid,omitempty"`
	GPU           GPUStatus          `json:"gpu"`
	Dependencies  []DependencyStatus `json:"dependencies,omitempty"`
	History       HistorySummary     `json:"history"`
}

// JobRequest carries job parameters from the CLI to the dispatcher.
type JobRequest struct {
	Source     string `json:"source"`
	Quality    string `json:"quality,omitempty"`
	FrameRate  int    `json:"frame_rate,omitempty"`
	Format     string `json:"format,omitempty"`
	Accelerate bool   `json:"accelerate,omitempty"`
}

// JobResponse describes an accepted job.
type JobResponse struct {
	JobID      string `json:"job_id"`
	Class      string `json:"class"`
	EntryPoint string `json:"entry_point"`
	ScriptPath string `json:"script_path"`
	Command    string `json:"command"`
}

// RenderRequest dispatches a full-quality render job.
type RenderRequest struct {
	Job JobRequest `json:"job"`
}

// RenderResponse reports the accepted render job.
type RenderResponse struct {
	Job JobResponse `json:"job"`
}

// PreviewRequest dispatches a preview job.
type PreviewRequest struct {
	Job JobRequest `json:"job"`
}

// PreviewResponse reports the accepted preview job.
type PreviewResponse struct {
	Job JobResponse `json:"job"`
}

// CancelRequest stops any active job.
type CancelRequest struct{}

// CancelResponse reports whether a job was active when the cancel arrived.
type CancelResponse struct {
	WasActive bool `json:"was_active"`
}

// TerminalReadRequest drains pending shell output.
type TerminalReadRequest struct{}

// TerminalReadResponse carries drained shell output.
type TerminalReadResponse struct {
	Output string `json:"output"`
}

// TerminalWriteRequest forwards raw keystrokes to the shell session.
type TerminalWriteRequest struct {
	Data string `json:"data"`
}

// TerminalWriteResponse acknowledges a terminal write.
type TerminalWriteResponse struct{}

// TerminalResizeRequest updates the PTY geometry.
type TerminalResizeRequest struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// TerminalResizeResponse acknowledges a resize.
type TerminalResizeResponse struct{}

// HistoryRecord mirrors a stored job history row for IPC callers.
type HistoryRecord struct {
	ID           int64  `json:"id"`
	JobID        string `json:"job_id"`
	Class        string `json:"class"`
	SceneName    string `json:"scene_name"`
	EntryPoint   string `json:"entry_point"`
	Quality      string `json:"quality"`
	FrameRate    int    `json:"frame_rate"`
	Format       string `json:"format"`
	Command      string `json:"command"`
	State        string `json:"state"`
	ArtifactPath string `json:"artifact_path,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at"`
	CompletedAt  string `json:"completed_at,omitempty"`
}

// HistoryListRequest fetches recent job records.
type HistoryListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// HistoryListResponse carries job records, newest first.
type HistoryListResponse struct {
	Records []HistoryRecord `json:"records"`
}

// HistoryClearRequest removes all job history records.
type HistoryClearRequest struct{}

// HistoryClearResponse acknowledges a history clear.
type HistoryClearResponse struct {
	Cleared bool `json:"cleared"`
}

// LogTailRequest streams daemon log lines from an offset.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit,omitempty"`
	Follow     bool  `json:"follow,omitempty"`
	WaitMillis int64 `json:"wait_millis,omitempty"`
}

// LogTailResponse carries log lines and the next read offset.
type LogTailResponse struct {
	Lines  []string `json:"lines,omitempty"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest sends a test push notification.
type TestNotificationRequest struct{}

// TestNotificationResponse reports test notification outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
