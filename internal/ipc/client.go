package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client wraps the JSON-RPC connection to the daemon socket.
type Client struct {
	client *rpc.Client
}

// Dial connects to the daemon IPC socket.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return &Client{client: rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))}, nil
}

// Close terminates the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Start requests daemon startup.
func (c *Client) Start() (*StartResponse, error) {
	resp := &StartResponse{}
	if err := c.client.Call("Sceneforge.Start", StartRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Stop requests daemon shutdown.
func (c *Client) Stop() (*StopResponse, error) {
	resp := &StopResponse{}
	if err := c.client.Call("Sceneforge.Stop", StopRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Status fetches current daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	resp := &StatusResponse{}
	if err := c.client.Call("Sceneforge.Status", StatusRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Render dispatches a full-quality render job.
func (c *Client) Render(job JobRequest) (*RenderResponse, error) {
	resp := &RenderResponse{}
	if err := c.client.Call("Sceneforge.Render", RenderRequest{Job: job}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Preview dispatches a preview job.
func (c *Client) Preview(job JobRequest) (*PreviewResponse, error) {
	resp := &PreviewResponse{}
	if err := c.client.Call("Sceneforge.Preview", PreviewRequest{Job: job}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Cancel stops any active job.
func (c *Client) Cancel() (*CancelResponse, error) {
	resp := &CancelResponse{}
	if err := c.client.Call("Sceneforge.Cancel", CancelRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// TerminalRead drains pending shell output.
func (c *Client) TerminalRead() (*TerminalReadResponse, error) {
	resp := &TerminalReadResponse{}
	if err := c.client.Call("Sceneforge.TerminalRead", TerminalReadRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// TerminalWrite forwards raw keystrokes to the shell session.
func (c *Client) TerminalWrite(data string) (*TerminalWriteResponse, error) {
	resp := &TerminalWriteResponse{}
	if err := c.client.Call("Sceneforge.TerminalWrite", TerminalWriteRequest{Data: data}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// TerminalResize updates the PTY geometry.
func (c *Client) TerminalResize(cols, rows int) (*TerminalResizeResponse, error) {
	resp := &TerminalResizeResponse{}
	if err := c.client.Call("Sceneforge.TerminalResize", TerminalResizeRequest{Cols: cols, Rows: rows}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// HistoryList fetches recent job records.
func (c *Client) HistoryList(limit int) (*HistoryListResponse, error) {
	resp := &HistoryListResponse{}
	if err := c.client.Call("Sceneforge.HistoryList", HistoryListRequest{Limit: limit}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// HistoryClear removes all job history records.
func (c *Client) HistoryClear() (*HistoryClearResponse, error) {
	resp := &HistoryClearResponse{}
	if err := c.client.Call("Sceneforge.HistoryClear", HistoryClearRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// LogTail streams daemon log lines from an offset.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	resp := &LogTailResponse{}
	if err := c.client.Call("Sceneforge.LogTail", req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// TestNotification sends a test push notification.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	resp := &TestNotificationResponse{}
	if err := c.client.Call("Sceneforge.TestNotification", TestNotificationRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
