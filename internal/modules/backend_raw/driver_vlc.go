package backendraw

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// VLCDriver drives VLC over its HTTP status interface.
type VLCDriver struct {
	baseURL    string
	http       *http.Client
	username   string
	password   string
	lastVolume int
}

// NewVLCDriver creates a VLC HTTP driver.
func NewVLCDriver(baseURL string, username string, password string, timeout time.Duration) (*VLCDriver, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("base_url required")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &VLCDriver{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: timeout},
		username:   username,
		password:   password,
		lastVolume: 256,
	}, nil
}

func (d *VLCDriver) Play(streamURL string, positionMS int64) error {
	if streamURL == "" {
		return errors.New("url required")
	}
	_, _ = d.request(url.Values{"command": []string{"pl_stop"}})
	_, _ = d.request(url.Values{"command": []string{"pl_empty"}})
	if _, err := d.request(url.Values{
		"command": []string{"in_play"},
		"input":   []string{streamURL},
	}); err != nil {
		return err
	}
	_, _ = d.request(url.Values{"command": []string{"pl_play"}})
	if positionMS > 0 {
		return d.Seek(positionMS)
	}
	return nil
}

func (d *VLCDriver) Pause() error {
	_, err := d.request(url.Values{"command": []string{"pl_forcepause"}})
	return err
}

func (d *VLCDriver) Resume() error {
	_, err := d.request(url.Values{"command": []string{"pl_play"}})
	return err
}

func (d *VLCDriver) Stop() error {
	_, err := d.request(url.Values{"command": []string{"pl_stop"}})
	return err
}

func (d *VLCDriver) Seek(positionMS int64) error {
	seconds := int64(0)
	if positionMS > 0 {
		seconds = positionMS / 1000
	}
	_, err := d.request(url.Values{
		"command": []string{"seek"},
		"val":     []string{strconv.FormatInt(seconds, 10)},
	})
	return err
}

func (d *VLCDriver) SetRate(rate float64) error {
	if rate <= 0 {
		return errors.New("rate must be positive")
	}
	_, err := d.request(url.Values{
		"command": []string{"rate"},
		"val":     []string{strconv.FormatFloat(rate, 'f', -1, 64)},
	})
	return err
}

func (d *VLCDriver) SetMute(mute bool) error {
	level := 0
	if !mute {
		level = d.lastVolume
		if level <= 0 {
			level = 256
		}
	}
	_, err := d.request(url.Values{
		"command": []string{"volume"},
		"val":     []string{strconv.Itoa(level)},
	})
	return err
}

func (d *VLCDriver) Position() (int64, int64, bool) {
	payload, err := d.request(nil)
	if err != nil {
		return 0, 0, false
	}
	var status vlcStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return 0, 0, false
	}
	return status.Time * 1000, status.Length * 1000, true
}

type vlcStatus struct {
	State  string `json:"state"`
	Time   int64  `json:"time"`
	Length int64  `json:"length"`
}

func (d *VLCDriver) request(values url.Values) ([]byte, error) {
	endpoint := d.baseURL + "/requests/status.json"
	if len(values) > 0 {
		endpoint = endpoint + "?" + values.Encode()
	}
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	if d.username != "" || d.password != "" {
		req.SetBasicAuth(d.username, d.password)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("vlc error: %s", msg)
	}
	return body, nil
}
