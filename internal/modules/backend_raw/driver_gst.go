//go:build gstreamer

package backendraw

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-gst/go-gst/gst"
)

// GstDriver plays media through a GStreamer pipeline built from a template.
type GstDriver struct {
	mu       sync.Mutex
	pipeline string
	device   string
	muted    bool
	current  *gst.Element
}

var gstInitOnce sync.Once

// NewGstDriver creates a GStreamer driver using a pipeline template. The
// template may reference {url}, {device} and {start_ms}.
func NewGstDriver(pipeline string, device string) (*GstDriver, error) {
	if strings.TrimSpace(pipeline) == "" {
		return nil, errors.New("pipeline template required")
	}
	gstInitOnce.Do(func() {
		gst.Init(nil)
	})
	return &GstDriver{pipeline: pipeline, device: device}, nil
}

func (d *GstDriver) Play(url string, positionMS int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pipeline, err := d.buildPipeline(url, positionMS)
	if err != nil {
		return err
	}
	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return err
	}
	if d.muted {
		_ = pipeline.SetProperty("volume", 0.0)
	}

	if d.current != nil {
		_ = d.current.SetState(gst.StateNull)
	}
	d.current = pipeline
	return nil
}

func (d *GstDriver) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return errors.New("not playing")
	}
	return d.current.SetState(gst.StatePaused)
}

func (d *GstDriver) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return errors.New("not playing")
	}
	return d.current.SetState(gst.StatePlaying)
}

func (d *GstDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return nil
	}
	_ = d.current.SetState(gst.StateNull)
	d.current = nil
	return nil
}

func (d *GstDriver) Seek(positionMS int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return errors.New("not playing")
	}
	positionNS := positionMS * int64(time.Millisecond)
	return d.current.SeekSimple(gst.FormatTime, gst.SeekFlagFlush|gst.SeekFlagKeyUnit, positionNS)
}

// SetRate is unsupported; rate changes need a full seek event with a rate,
// which the simple pipeline template does not carry.
func (d *GstDriver) SetRate(rate float64) error {
	return errors.New("rate control not supported")
}

func (d *GstDriver) SetMute(mute bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.muted = mute
	if d.current != nil {
		volume := 1.0
		if mute {
			volume = 0.0
		}
		_ = d.current.SetProperty("volume", volume)
	}
	return nil
}

func (d *GstDriver) Position() (int64, int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return 0, 0, false
	}
	ok, posNS := d.current.QueryPosition(gst.FormatTime)
	if !ok {
		return 0, 0, false
	}
	durMS := int64(0)
	if ok, durNS := d.current.QueryDuration(gst.FormatTime); ok {
		durMS = durNS / int64(time.Millisecond)
	}
	return posNS / int64(time.Millisecond), durMS, true
}

func (d *GstDriver) buildPipeline(url string, positionMS int64) (*gst.Element, error) {
	pipeline := d.pipeline
	pipeline = strings.ReplaceAll(pipeline, "{url}", url)
	pipeline = strings.ReplaceAll(pipeline, "{device}", d.device)
	pipeline = strings.ReplaceAll(pipeline, "{start_ms}", fmt.Sprintf("%d", positionMS))
	return gst.ParseLaunch(pipeline)
}
