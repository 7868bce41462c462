package surface

import (
	"fmt"
	"math"
	"strconv"
	"sync"
)

const (
	// SkipStep is the distance of one skip forward or back.
	SkipStep = 10.0
	// VolumeStep is the change applied by one volume up/down.
	VolumeStep = 0.1

	minRate = 0.25
	maxRate = 2.0
)

// TransportState is the mirrored state of the transport controls.
type TransportState struct {
	Playing          bool    `json:"playing"`
	CurrentTime      float64 `json:"currentTime"`
	Duration         float64 `json:"duration"`
	Volume           float64 `json:"volume"`
	Muted            bool    `json:"muted"`
	Rate             float64 `json:"rate"`
	Fullscreen       bool    `json:"fullscreen"`
	PictureInPicture bool    `json:"pictureInPicture"`
}

// Transport holds TransportState behind a mutex.
type Transport struct {
	mu    sync.Mutex
	state TransportState
}

// NewTransport returns a paused transport at full volume and normal speed.
func NewTransport() *Transport {
	return &Transport{state: TransportState{Volume: 1, Rate: 1}}
}

// State returns a copy of the current state.
func (t *Transport) State() TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reset rewinds for a newly loaded entry. Volume, mute and rate carry over.
func (t *Transport) Reset(duration float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Playing = false
	t.state.CurrentTime = 0
	t.state.Duration = finite(duration)
}

// Report records the position and duration the surface last reported.
func (t *Transport) Report(currentTime, duration float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Duration = finite(duration)
	t.state.CurrentTime = t.clampTime(currentTime)
}

// SetPlaying records play or pause.
func (t *Transport) SetPlaying(playing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Playing = playing
}

// TogglePlay flips between playing and paused and returns the new value.
func (t *Transport) TogglePlay() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Playing = !t.state.Playing
	return t.state.Playing
}

// Stop pauses and rewinds to the start.
func (t *Transport) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Playing = false
	t.state.CurrentTime = 0
}

// Skip moves the position by delta seconds and returns the new position.
func (t *Transport) Skip(delta float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.CurrentTime = t.clampTime(t.state.CurrentTime + delta)
	return t.state.CurrentTime
}

// SeekFraction seeks to pos (0..1) of the duration. Without a known
// duration it does nothing.
func (t *Transport) SeekFraction(pos float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Duration <= 0 {
		return t.state.CurrentTime
	}
	t.state.CurrentTime = t.clampTime(clamp(pos, 0, 1) * t.state.Duration)
	return t.state.CurrentTime
}

// SetVolumePercent sets the volume from a 0-100 slider value.
func (t *Transport) SetVolumePercent(percent float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Volume = clamp(percent/100, 0, 1)
	return t.state.Volume
}

// AdjustVolume changes the volume by delta.
func (t *Transport) AdjustVolume(delta float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Volume = clamp(math.Round((t.state.Volume+delta)*100)/100, 0, 1)
	return t.state.Volume
}

// ToggleMute flips mute.
func (t *Transport) ToggleMute() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Muted = !t.state.Muted
	return t.state.Muted
}

// SetRate parses a speed selector value such as "1.5".
func (t *Transport) SetRate(value string) (float64, error) {
	rate, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(rate) {
		return 0, fmt.Errorf("invalid playback rate %q", value)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Rate = clamp(rate, minRate, maxRate)
	return t.state.Rate, nil
}

// ToggleFullscreen flips fullscreen.
func (t *Transport) ToggleFullscreen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Fullscreen = !t.state.Fullscreen
	return t.state.Fullscreen
}

// TogglePictureInPicture flips picture-in-picture.
func (t *Transport) TogglePictureInPicture() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.PictureInPicture = !t.state.PictureInPicture
	return t.state.PictureInPicture
}

func (t *Transport) clampTime(v float64) float64 {
	v = finite(v)
	if t.state.Duration > 0 {
		return clamp(v, 0, t.state.Duration)
	}
	return math.Max(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
