// Package status provides a thread-safe status tracker for the button-sensor daemon.
// It is designed to be read by HTTP handlers while the run loop writes to it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/button-sensor/internal/button"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Name              string
	Mode              string
	TickMs            int64
	PressDebounceMs   int64
	ReleaseDebounceMs int64
	LongPressMs       int64
	HeartbeatMs       int64
	Broker            string
	HTTPAddr          string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         button.State
	Pressed       bool // last raw sample
	Counts        button.EventCounts
	LastEvent     button.Event
	LastEventAt   time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the state machine position, last sample and event counts.
// Called from runLoop on every tick.
func (t *Tracker) Update(state button.State, pressed bool, counts button.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Pressed = pressed
	t.snap.Counts = counts
	t.mu.Unlock()
}

// RecordEvent remembers the most recent button event.
func (t *Tracker) RecordEvent(e button.Event, at time.Time) {
	t.mu.Lock()
	t.snap.LastEvent = e
	t.snap.LastEventAt = at
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
