// Package camilla implements the websocket client for the CamillaDSP
// control protocol.
//
// Commands are JSON frames: a bare string for commands without an argument
// ("GetVolume") and a single-key object for commands with one
// ({"SetVolume": -20.5}). The engine answers with
// {"<Command>": {"result": "Ok"|"Error", "value": ...}}. One request is in
// flight at a time; the connection mutex serializes round trips.
package camilla

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/daverz/camilla-remote-control/internal/apperrors"
	"github.com/daverz/camilla-remote-control/internal/pipeline"
)

// Client is a connection to a running CamillaDSP instance.
type Client struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

// Dial connects to the engine's websocket control port.
func Dial(host string, port int, timeout time.Duration) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: fmt.Sprintf("%s:%d", host, port)}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, apperrors.Engine(fmt.Sprintf("connect to engine at %s", u.Host)).Wrap(err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// Close shuts the control connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

type commandResult struct {
	Result string          `json:"result"`
	Value  json.RawMessage `json:"value"`
}

// roundTrip sends one command and waits for its reply. Passing an argument
// switches to the single-key object form.
func (c *Client) roundTrip(command string, args ...interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var payload interface{} = command
	if len(args) == 1 {
		payload = map[string]interface{}{command: args[0]}
	}
	frame, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Engine("encode engine command").Wrap(err)
	}

	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return nil, apperrors.Engine("set write deadline").Wrap(err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return nil, apperrors.Engine(fmt.Sprintf("send %s", command)).Wrap(err)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return nil, apperrors.Engine("set read deadline").Wrap(err)
	}
	_, reply, err := c.conn.ReadMessage()
	if err != nil {
		return nil, apperrors.Engine(fmt.Sprintf("read %s reply", command)).Wrap(err)
	}

	var envelope map[string]commandResult
	if err := json.Unmarshal(reply, &envelope); err != nil {
		return nil, apperrors.Engine(fmt.Sprintf("decode %s reply", command)).Wrap(err)
	}
	res, ok := envelope[command]
	if !ok {
		return nil, apperrors.Engine(fmt.Sprintf("engine replied to a different command than %s", command))
	}
	if res.Result != "Ok" {
		detail := strings.TrimSpace(string(res.Value))
		return nil, apperrors.Engine(fmt.Sprintf("%s failed", command)).WithInternal("engine said: %s", detail)
	}
	return res.Value, nil
}

// ValidateConfig submits a description to the engine's schema validation.
func (c *Client) ValidateConfig(d *pipeline.Description) error {
	doc, err := d.MarshalWire()
	if err != nil {
		return err
	}
	if _, err := c.roundTrip("ValidateConfig", doc); err != nil {
		return apperrors.Schema("pipeline description rejected by engine").Wrap(err)
	}
	return nil
}

// SetConfig replaces the engine's live pipeline atomically.
func (c *Client) SetConfig(d *pipeline.Description) error {
	doc, err := d.MarshalWire()
	if err != nil {
		return err
	}
	_, err = c.roundTrip("SetConfig", doc)
	return err
}

// GetConfig reads the engine's live pipeline description.
func (c *Client) GetConfig() (*pipeline.Description, error) {
	value, err := c.roundTrip("GetConfig")
	if err != nil {
		return nil, err
	}
	var doc string
	if err := json.Unmarshal(value, &doc); err != nil {
		return nil, apperrors.Engine("decode live config").Wrap(err)
	}
	return pipeline.UnmarshalWire(doc)
}

// GetVolume reads the live volume in dB.
func (c *Client) GetVolume() (float64, error) {
	value, err := c.roundTrip("GetVolume")
	if err != nil {
		return 0, err
	}
	var vol float64
	if err := json.Unmarshal(value, &vol); err != nil {
		return 0, apperrors.Engine("decode volume").Wrap(err)
	}
	return vol, nil
}

// SetVolume writes the live volume in dB.
func (c *Client) SetVolume(vol float64) error {
	_, err := c.roundTrip("SetVolume", vol)
	return err
}

// GetMute reads the live mute flag.
func (c *Client) GetMute() (bool, error) {
	value, err := c.roundTrip("GetMute")
	if err != nil {
		return false, err
	}
	var muted bool
	if err := json.Unmarshal(value, &muted); err != nil {
		return false, apperrors.Engine("decode mute state").Wrap(err)
	}
	return muted, nil
}

// SetMute writes the live mute flag.
func (c *Client) SetMute(muted bool) error {
	_, err := c.roundTrip("SetMute", muted)
	return err
}

// GetVersion reads the engine's version string.
func (c *Client) GetVersion() (string, error) {
	value, err := c.roundTrip("GetVersion")
	if err != nil {
		return "", err
	}
	var version string
	if err := json.Unmarshal(value, &version); err != nil {
		return "", apperrors.Engine("decode version").Wrap(err)
	}
	return version, nil
}

// SetConfigPath points the engine at an on-disk pipeline file. Used only by
// the file-path loading mode.
func (c *Client) SetConfigPath(path string) error {
	_, err := c.roundTrip("SetConfigName", path)
	return err
}

// Reload re-applies the engine's currently named pipeline file. Used only by
// the file-path loading mode.
func (c *Client) Reload() error {
	_, err := c.roundTrip("Reload")
	return err
}
