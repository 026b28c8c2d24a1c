package camilla

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daverz/camilla-remote-control/internal/apperrors"
	"github.com/daverz/camilla-remote-control/internal/config"
	"github.com/daverz/camilla-remote-control/internal/pipeline"
)

// fakeEngineServer speaks just enough of the CamillaDSP control protocol for
// the client tests.
type fakeEngineServer struct {
	mu       sync.Mutex
	volume   float64
	muted    bool
	liveWire string
	failures map[string]string // command -> error value
}

func (s *fakeEngineServer) handle(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		command, arg := decodeCommand(msg)
		reply := s.execute(command, arg)
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func decodeCommand(msg []byte) (string, json.RawMessage) {
	var name string
	if err := json.Unmarshal(msg, &name); err == nil {
		return name, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(msg, &obj); err == nil {
		for k, v := range obj {
			return k, v
		}
	}
	return "", nil
}

func (s *fakeEngineServer) execute(command string, arg json.RawMessage) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if detail, ok := s.failures[command]; ok {
		return map[string]interface{}{command: map[string]interface{}{
			"result": "Error",
			"value":  detail,
		}}
	}

	var value interface{}
	switch command {
	case "GetVolume":
		value = s.volume
	case "SetVolume":
		_ = json.Unmarshal(arg, &s.volume)
	case "GetMute":
		value = s.muted
	case "SetMute":
		_ = json.Unmarshal(arg, &s.muted)
	case "GetConfig":
		value = s.liveWire
	case "SetConfig", "ValidateConfig":
		var doc string
		_ = json.Unmarshal(arg, &doc)
		if !strings.Contains(doc, "devices:") {
			return map[string]interface{}{command: map[string]interface{}{
				"result": "Error",
				"value":  "Invalid config",
			}}
		}
		if command == "SetConfig" {
			s.liveWire = doc
		} else {
			value = doc
		}
	case "GetVersion":
		value = "2.0.3"
	case "SetConfigName", "Reload":
	default:
		return map[string]interface{}{command: map[string]interface{}{
			"result": "Error",
			"value":  "Unknown command",
		}}
	}
	result := map[string]interface{}{"result": "Ok"}
	if value != nil {
		result["value"] = value
	}
	return map[string]interface{}{command: result}
}

func newTestClient(t *testing.T, s *fakeEngineServer) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(srv.Close)

	host, portStr, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := Dial(host, port, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestVolumeRoundTrip(t *testing.T) {
	client := newTestClient(t, &fakeEngineServer{volume: -20.0})

	vol, err := client.GetVolume()
	require.NoError(t, err)
	assert.Equal(t, -20.0, vol)

	require.NoError(t, client.SetVolume(-19.5))
	vol, err = client.GetVolume()
	require.NoError(t, err)
	assert.Equal(t, -19.5, vol)
}

func TestMuteRoundTrip(t *testing.T) {
	client := newTestClient(t, &fakeEngineServer{})

	muted, err := client.GetMute()
	require.NoError(t, err)
	assert.False(t, muted)

	require.NoError(t, client.SetMute(true))
	muted, err = client.GetMute()
	require.NoError(t, err)
	assert.True(t, muted)
}

func TestConfigRoundTrip(t *testing.T) {
	client := newTestClient(t, &fakeEngineServer{})

	desc := pipeline.Synthesize(pipeline.Params{
		Topology:         config.TopologyTwoPointOne,
		Source:           config.SourceStream,
		Correction:       config.CorrectionDRC,
		PlaybackDevice:   "hw:CARD=M4,DEV=0",
		PlaybackChannels: 4,
		SampleRate:       44100,
		CrossoverHz:      80,
		MainsDelayMs:     9.2,
		DRCFilterPath:    "/etc/camilla/filters/drc.wav",
	})
	require.NoError(t, client.SetConfig(desc))

	live, err := client.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, desc, live, "the description survives the wire round trip")
}

func TestValidateConfigOk(t *testing.T) {
	client := newTestClient(t, &fakeEngineServer{})

	desc := pipeline.Synthesize(pipeline.Params{
		Topology:         config.TopologyStereo,
		Source:           config.SourceStream,
		PlaybackDevice:   "hw:DAC",
		PlaybackChannels: 2,
		SampleRate:       48000,
	})
	assert.NoError(t, client.ValidateConfig(desc))
}

func TestValidateConfigRejectionIsSchemaError(t *testing.T) {
	server := &fakeEngineServer{failures: map[string]string{"ValidateConfig": "Unknown field 'bogus'"}}
	client := newTestClient(t, server)

	desc := pipeline.Synthesize(pipeline.Params{
		Topology:         config.TopologyStereo,
		Source:           config.SourceStream,
		PlaybackDevice:   "hw:DAC",
		PlaybackChannels: 2,
		SampleRate:       48000,
	})
	err := client.ValidateConfig(desc)
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeSchema, appErr.Code)
}

func TestCommandFailureIsEngineError(t *testing.T) {
	server := &fakeEngineServer{failures: map[string]string{"SetVolume": "Invalid volume"}}
	client := newTestClient(t, server)

	err := client.SetVolume(-10.0)
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeEngine, appErr.Code)
}

func TestGetVersion(t *testing.T) {
	client := newTestClient(t, &fakeEngineServer{})

	version, err := client.GetVersion()
	require.NoError(t, err)
	assert.Equal(t, "2.0.3", version)
}

func TestReloadPath(t *testing.T) {
	client := newTestClient(t, &fakeEngineServer{})

	require.NoError(t, client.SetConfigPath("/etc/camilla/Stream-2.1.yml"))
	require.NoError(t, client.Reload())
}

func TestDialFailureIsEngineError(t *testing.T) {
	_, err := Dial("127.0.0.1", 1, 200*time.Millisecond)
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeEngine, appErr.Code)
}
