package surface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/olahol/melody"

	"playlist-player/internal/catalog"
	"playlist-player/internal/logging"
	"playlist-player/internal/metrics"
	"playlist-player/internal/player"
	"playlist-player/internal/session"
)

// eventTimeout bounds the catalog write triggered by an inbound event.
const eventTimeout = 5 * time.Second

// Commands is the part of the player that inbound events drive.
type Commands interface {
	NaturalEnd(id string) session.State
	State() session.State
	MetadataLoaded(ctx context.Context, id string, seconds float64) (bool, error)
	Load(id string) bool
	Snapshot(query string) player.Snapshot
}

// Message is a command sent to surfaces.
type Message struct {
	Type      string              `json:"type"`
	Entry     *catalog.MediaEntry `json:"entry,omitempty"`
	Snapshot  *player.Snapshot    `json:"snapshot,omitempty"`
	Transport *TransportState     `json:"transport,omitempty"`
}

// Event is a message received from a surface.
type Event struct {
	Type        string  `json:"type"`
	ID          string  `json:"id,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	CurrentTime float64 `json:"currentTime,omitempty"`
	Action      string  `json:"action,omitempty"`
	Value       string  `json:"value,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
}

// ErrUnknownEvent is returned for events the hub does not understand.
var ErrUnknownEvent = errors.New("unknown surface event")

// Hub is the websocket playback surface.
type Hub struct {
	m         *melody.Melody
	transport *Transport

	mu   sync.RWMutex
	cmds Commands
}

// NewHub creates a hub mirroring transport state into t.
func NewHub(t *Transport) *Hub {
	if t == nil {
		t = NewTransport()
	}
	h := &Hub{m: melody.New(), transport: t}

	// Surfaces are served from the same origin or from a local file.
	h.m.Upgrader.CheckOrigin = func(r *http.Request) bool { return true }

	h.m.HandleConnect(h.handleConnect)
	h.m.HandleDisconnect(func(*melody.Session) {
		metrics.SurfaceClients.Set(float64(h.m.Len()))
		logging.Debug("Surface: client disconnected (%d connected)", h.m.Len())
	})
	h.m.HandleMessage(h.handleMessage)
	h.m.HandleError(func(_ *melody.Session, err error) {
		logging.Debug("Surface: websocket error: %v", err)
	})
	return h
}

// Bind sets the player that inbound events are delivered to.
func (h *Hub) Bind(cmds Commands) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cmds = cmds
}

// Transport returns the mirrored transport.
func (h *Hub) Transport() *Transport {
	return h.transport
}

// ServeHTTP upgrades the request to a websocket session.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.m.HandleRequest(w, r); err != nil {
		logging.Warn("Surface: websocket upgrade failed: %v", err)
	}
}

// Clients returns the number of connected surfaces.
func (h *Hub) Clients() int {
	return h.m.Len()
}

// Close disconnects every surface.
func (h *Hub) Close() error {
	if h.m.IsClosed() {
		return nil
	}
	return h.m.Close()
}

// Load implements player.Surface.
func (h *Hub) Load(entry catalog.MediaEntry) {
	h.transport.Reset(entry.KnownDuration())
	h.broadcast(Message{Type: "load", Entry: &entry})
}

// Play implements player.Surface.
func (h *Hub) Play() {
	h.transport.SetPlaying(true)
	h.broadcast(Message{Type: "play"})
}

// Pause implements player.Surface.
func (h *Hub) Pause() {
	h.transport.SetPlaying(false)
	h.broadcast(Message{Type: "pause"})
}

// Clear implements player.Surface.
func (h *Hub) Clear() {
	h.transport.Reset(0)
	h.broadcast(Message{Type: "clear"})
}

// Changed implements player.ChangeListener.
func (h *Hub) Changed(snap player.Snapshot) {
	h.broadcast(Message{Type: "state", Snapshot: &snap})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("Surface: failed to encode %s message: %v", msg.Type, err)
		return
	}
	if h.m.IsClosed() {
		return
	}
	if err := h.m.Broadcast(data); err != nil {
		logging.Warn("Surface: broadcast %s failed: %v", msg.Type, err)
	}
}

func (h *Hub) commands() Commands {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cmds
}

func (h *Hub) handleConnect(s *melody.Session) {
	metrics.SurfaceClients.Set(float64(h.m.Len()))
	logging.Debug("Surface: client connected from %s (%d connected)", s.Request.RemoteAddr, h.m.Len())

	ts := h.transport.State()
	msgs := []Message{{Type: "transport", Transport: &ts}}
	if cmds := h.commands(); cmds != nil {
		snap := cmds.Snapshot("")
		msgs = append(msgs, Message{Type: "state", Snapshot: &snap})
	}
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := s.Write(data); err != nil {
			logging.Debug("Surface: initial %s write failed: %v", msg.Type, err)
		}
	}
}

func (h *Hub) handleMessage(s *melody.Session, msg []byte) {
	// heartbeat
	if bytes.Equal(msg, []byte("ping")) {
		if err := s.Write([]byte("pong")); err != nil {
			logging.Debug("Surface: sending pong failed: %v", err)
		}
		return
	}

	var ev Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		metrics.SurfaceEventsTotal.WithLabelValues("unknown").Inc()
		logging.Warn("Surface: invalid message: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	if err := h.HandleEvent(ctx, ev); err != nil {
		logging.Warn("Surface: %v", err)
	}
}

// HandleEvent applies one inbound event.
func (h *Hub) HandleEvent(ctx context.Context, ev Event) error {
	cmds := h.commands()

	switch ev.Type {
	case "naturalEnd", "ended":
		metrics.SurfaceEventsTotal.WithLabelValues("naturalEnd").Inc()
		if cmds == nil {
			return nil
		}
		cmds.NaturalEnd(ev.ID)
		return nil

	case "metadataLoaded":
		metrics.SurfaceEventsTotal.WithLabelValues("metadataLoaded").Inc()
		if cmds == nil || ev.ID == "" {
			return nil
		}
		if cmds.State().ActiveID == ev.ID {
			h.transport.Report(0, ev.Duration)
		}
		if _, err := cmds.MetadataLoaded(ctx, ev.ID, ev.Duration); err != nil {
			return fmt.Errorf("recording duration for %s: %w", ev.ID, err)
		}
		return nil

	case "select":
		metrics.SurfaceEventsTotal.WithLabelValues("select").Inc()
		if cmds != nil {
			cmds.Load(ev.ID)
		}
		return nil

	case "timeupdate":
		h.transport.Report(ev.CurrentTime, ev.Duration)
		return nil

	case "transport":
		metrics.SurfaceEventsTotal.WithLabelValues("transport").Inc()
		return h.applyTransport(ev)
	}

	metrics.SurfaceEventsTotal.WithLabelValues("unknown").Inc()
	return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
}

func (h *Hub) applyTransport(ev Event) error {
	t := h.transport

	switch ev.Action {
	case "toggle":
		if t.TogglePlay() {
			h.broadcast(Message{Type: "play"})
		} else {
			h.broadcast(Message{Type: "pause"})
		}
	case "play":
		h.Play()
	case "pause":
		h.Pause()
	case "stop":
		t.Stop()
		h.broadcast(Message{Type: "pause"})
	case "skip":
		step := ev.Amount
		if step == 0 {
			step = SkipStep
		}
		t.Skip(step)
	case "seek":
		t.SeekFraction(ev.Amount)
	case "volume":
		t.SetVolumePercent(ev.Amount)
	case "volumeStep":
		step := VolumeStep
		if ev.Amount < 0 {
			step = -VolumeStep
		}
		t.AdjustVolume(step)
	case "mute":
		t.ToggleMute()
	case "rate":
		if _, err := t.SetRate(ev.Value); err != nil {
			return err
		}
	case "fullscreen":
		t.ToggleFullscreen()
	case "pip":
		t.TogglePictureInPicture()
	default:
		return fmt.Errorf("%w: transport action %q", ErrUnknownEvent, ev.Action)
	}

	ts := t.State()
	h.broadcast(Message{Type: "transport", Transport: &ts})
	return nil
}
