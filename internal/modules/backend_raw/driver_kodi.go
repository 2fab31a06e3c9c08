package backendraw

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"
)

// KodiDriver drives Kodi over JSON-RPC.
type KodiDriver struct {
	baseURL      string
	http         *http.Client
	username     string
	password     string
	mu           sync.Mutex
	lastPlayerID *int
}

// NewKodiDriver creates a Kodi JSON-RPC driver.
func NewKodiDriver(baseURL string, username string, password string, timeout time.Duration) (*KodiDriver, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("base_url required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(parsed.Path, "/jsonrpc") {
		parsed.Path = path.Join(parsed.Path, "/jsonrpc")
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &KodiDriver{
		baseURL:  parsed.String(),
		http:     &http.Client{Timeout: timeout},
		username: username,
		password: password,
	}, nil
}

func (d *KodiDriver) Play(mediaURL string, positionMS int64) error {
	if mediaURL == "" {
		return errors.New("url required")
	}
	if _, err := d.rpc("Player.Open", map[string]any{
		"item": map[string]any{"file": mediaURL},
	}); err != nil {
		return err
	}
	if positionMS > 0 {
		playerID, err := d.activePlayerID()
		if err != nil {
			return err
		}
		return d.seekPlayer(playerID, positionMS)
	}
	return nil
}

func (d *KodiDriver) Pause() error {
	playerID, err := d.activePlayerID()
	if err != nil {
		return err
	}
	_, err = d.rpc("Player.PlayPause", map[string]any{"playerid": playerID, "play": false})
	return err
}

func (d *KodiDriver) Resume() error {
	playerID, err := d.activePlayerID()
	if err != nil {
		return err
	}
	_, err = d.rpc("Player.PlayPause", map[string]any{"playerid": playerID, "play": true})
	return err
}

func (d *KodiDriver) Stop() error {
	playerID, err := d.activePlayerID()
	if err != nil {
		return err
	}
	_, err = d.rpc("Player.Stop", map[string]any{"playerid": playerID})
	return err
}

func (d *KodiDriver) Seek(positionMS int64) error {
	playerID, err := d.activePlayerID()
	if err != nil {
		return err
	}
	return d.seekPlayer(playerID, positionMS)
}

func (d *KodiDriver) seekPlayer(playerID int, positionMS int64) error {
	_, err := d.rpc("Player.Seek", map[string]any{
		"playerid": playerID,
		"value":    toTimeObject(positionMS),
	})
	return err
}

// SetRate maps the rate onto Kodi's integer speed steps; fractional rates
// round to the nearest step.
func (d *KodiDriver) SetRate(rate float64) error {
	if rate <= 0 {
		return errors.New("rate must be positive")
	}
	playerID, err := d.activePlayerID()
	if err != nil {
		return err
	}
	speed := int(math.Round(rate))
	if speed < 1 {
		speed = 1
	}
	_, err = d.rpc("Player.SetSpeed", map[string]any{"playerid": playerID, "speed": speed})
	return err
}

func (d *KodiDriver) SetMute(mute bool) error {
	_, err := d.rpc("Application.SetMute", map[string]any{"mute": mute})
	return err
}

func (d *KodiDriver) Position() (int64, int64, bool) {
	playerID, err := d.activePlayerID()
	if err != nil {
		return 0, 0, false
	}
	raw, err := d.rpc("Player.GetProperties", map[string]any{
		"playerid":   playerID,
		"properties": []string{"time", "totaltime"},
	})
	if err != nil {
		return 0, 0, false
	}
	var props playerProperties
	if err := json.Unmarshal(raw, &props); err != nil {
		return 0, 0, false
	}
	return fromTimeObject(props.Time), fromTimeObject(props.TotalTime), true
}

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type activePlayer struct {
	PlayerID int    `json:"playerid"`
	Type     string `json:"type"`
}

type playerProperties struct {
	Time      timeObject `json:"time"`
	TotalTime timeObject `json:"totaltime"`
}

type timeObject struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	Milliseconds int `json:"milliseconds"`
}

func (d *KodiDriver) rpc(method string, params interface{}) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      int(time.Now().UnixNano()),
		Method:  method,
		Params:  params,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequest("POST", d.baseURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.username != "" || d.password != "" {
		httpReq.SetBasicAuth(d.username, d.password)
	}
	resp, err := d.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("kodi error: %s", strings.TrimSpace(string(body)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, err
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("kodi error: %s", rpcResp.Error.Message)
	}
	return rpcResp.Result, nil
}

func (d *KodiDriver) activePlayerID() (int, error) {
	raw, err := d.rpc("Player.GetActivePlayers", nil)
	if err != nil {
		return 0, err
	}
	var players []activePlayer
	if err := json.Unmarshal(raw, &players); err != nil {
		return 0, err
	}
	if len(players) == 0 {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.lastPlayerID != nil {
			return *d.lastPlayerID, nil
		}
		return 0, errors.New("no active player")
	}
	playerID := players[0].PlayerID
	d.mu.Lock()
	d.lastPlayerID = &playerID
	d.mu.Unlock()
	return playerID, nil
}

func toTimeObject(ms int64) timeObject {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	return timeObject{
		Hours:        int(totalSeconds / 3600),
		Minutes:      int((totalSeconds % 3600) / 60),
		Seconds:      int(totalSeconds % 60),
		Milliseconds: int(ms % 1000),
	}
}

func fromTimeObject(obj timeObject) int64 {
	return int64(obj.Hours)*3600*1000 +
		int64(obj.Minutes)*60*1000 +
		int64(obj.Seconds)*1000 +
		int64(obj.Milliseconds)
}
