package mqtt

import "github.com/sweeney/button-sensor/internal/button"

// FakePublisher records what would have gone to the broker.
type FakePublisher struct {
	Events   []Event
	Payloads [][]byte // formatted payload per recorded Event

	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// Injected failures. A failed publish records nothing.
	PublishError       error
	PublishSystemError error

	Connected bool // returned by IsConnected
	Closed    bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(event Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// EventTypes lists the recorded button events in publish order.
func (f *FakePublisher) EventTypes() []button.Event {
	var out []button.Event
	for _, e := range f.Events {
		out = append(out, e.Type)
	}
	return out
}

// SystemEventsNamed returns the recorded system events with the given name.
func (f *FakePublisher) SystemEventsNamed(name string) []SystemEvent {
	var out []SystemEvent
	for _, e := range f.SystemEvents {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset forgets everything recorded and clears injected failures.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{}
}
