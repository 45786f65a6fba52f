package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the running engine.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the engine status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Cadenza.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges direct credentials for a session.
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.client.Call("Cadenza.Login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExperienceList returns cached experiences, optionally refreshing first.
func (c *Client) ExperienceList(refresh bool) (*ExperienceListResponse, error) {
	var resp ExperienceListResponse
	req := ExperienceListRequest{Refresh: refresh}
	if err := c.client.Call("Cadenza.ExperienceList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExperienceDescribe returns details for a single experience.
func (c *Client) ExperienceDescribe(id int64, refresh bool) (*ExperienceDescribeResponse, error) {
	var resp ExperienceDescribeResponse
	req := ExperienceDescribeRequest{ID: id, Refresh: refresh}
	if err := c.client.Call("Cadenza.ExperienceDescribe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ArtistList returns cached artists, optionally refreshing first.
func (c *Client) ArtistList(refresh bool) (*ArtistListResponse, error) {
	var resp ArtistListResponse
	req := ArtistListRequest{Refresh: refresh}
	if err := c.client.Call("Cadenza.ArtistList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Sync refreshes the catalog listings from the mother database.
func (c *Client) Sync(metadata bool) (*SyncResponse, error) {
	var resp SyncResponse
	req := SyncRequest{Metadata: metadata}
	if err := c.client.Call("Cadenza.Sync", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PrefGet reads one preference value.
func (c *Client) PrefGet(keyPath string) (*PrefGetResponse, error) {
	var resp PrefGetResponse
	req := PrefGetRequest{KeyPath: keyPath}
	if err := c.client.Call("Cadenza.PrefGet", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PrefSet writes one preference value.
func (c *Client) PrefSet(keyPath string, value any) error {
	var resp PrefSetResponse
	req := PrefSetRequest{KeyPath: keyPath, Value: value}
	return c.client.Call("Cadenza.PrefSet", req, &resp)
}

// PrefClear removes one preference value.
func (c *Client) PrefClear(keyPath string) error {
	var resp PrefClearResponse
	req := PrefClearRequest{KeyPath: keyPath}
	return c.client.Call("Cadenza.PrefClear", req, &resp)
}

// PrefSync merges preferences with the mother database; direction is
// "download" or "upload".
func (c *Client) PrefSync(direction string) error {
	var resp PrefSyncResponse
	req := PrefSyncRequest{Direction: direction}
	return c.client.Call("Cadenza.PrefSync", req, &resp)
}

// FaderRamp schedules a fader ramp.
func (c *Client) FaderRamp(track int, target, durationBeats float64) error {
	var resp FaderRampResponse
	req := FaderRampRequest{Track: track, Target: target, DurationBeats: durationBeats}
	return c.client.Call("Cadenza.FaderRamp", req, &resp)
}

// FaderValue reads the current value of one fader track.
func (c *Client) FaderValue(track int) (*FaderValueResponse, error) {
	var resp FaderValueResponse
	req := FaderValueRequest{Track: track}
	if err := c.client.Call("Cadenza.FaderValue", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetTempo changes the beat clock tempo.
func (c *Client) SetTempo(bpm float64) error {
	var resp TempoResponse
	return c.client.Call("Cadenza.SetTempo", TempoRequest{BPM: bpm}, &resp)
}

// Clock reads the transport position.
func (c *Client) Clock() (*ClockResponse, error) {
	var resp ClockResponse
	if err := c.client.Call("Cadenza.Clock", ClockRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DiskUsage fetches local storage accounting.
func (c *Client) DiskUsage() (*DiskUsageResponse, error) {
	var resp DiskUsageResponse
	if err := c.client.Call("Cadenza.DiskUsage", DiskUsageRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Unload drops downloaded theme payloads for one experience.
func (c *Client) Unload(experienceID int64) error {
	var resp UnloadResponse
	return c.client.Call("Cadenza.Unload", UnloadRequest{ExperienceID: experienceID}, &resp)
}

// CleanDB compacts the daughter database.
func (c *Client) CleanDB() error {
	var resp CleanDBResponse
	return c.client.Call("Cadenza.CleanDB", CleanDBRequest{}, &resp)
}

// LogTail returns log lines from the engine log.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Cadenza.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
