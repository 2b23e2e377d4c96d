package button

// Button tracks debounce state and press classification for one input.
//
// The zero value is a Released short-press button with zero debounce; call
// InitMs or InitWithLongPressMs before the first Tick.
//
// Tick and the Clear methods must not run concurrently. A caller that clears
// flags from a different goroutine than the one calling Tick must serialize
// the two itself.
type Button struct {
	pressDebounceTicks   uint32
	releaseDebounceTicks uint32
	longPressTicks       uint32

	longPressCounter uint32
	debounceCounter  uint32

	state State
	mode  Mode

	// Sticky until cleared by the caller.
	buttonDown bool
	buttonUp   bool
	shortPress bool
	longPress  bool
}

// New returns a Button initialized with InitWithLongPressMs.
// A longPressMs shorter than one tick selects ShortPressMode.
func New(pressDebounceMs, releaseDebounceMs, longPressMs, tickMs uint32) *Button {
	b := &Button{}
	b.InitWithLongPressMs(pressDebounceMs, releaseDebounceMs, longPressMs, tickMs)
	return b
}

// InitMs initializes a short-press button.
func (b *Button) InitMs(pressDebounceMs, releaseDebounceMs, tickMs uint32) {
	b.InitWithLongPressMs(pressDebounceMs, releaseDebounceMs, 0, tickMs)
}

// InitWithLongPressMs converts the millisecond windows to ticks using
// truncating division by tickMs and resets the state to Released.
//
// A tickMs of zero leaves the tick periods at their previous values; callers
// must not pass it. A long-press period of zero ticks forces ShortPressMode.
func (b *Button) InitWithLongPressMs(pressDebounceMs, releaseDebounceMs, longPressMs, tickMs uint32) {
	if tickMs != 0 {
		b.pressDebounceTicks = pressDebounceMs / tickMs
		b.releaseDebounceTicks = releaseDebounceMs / tickMs
		b.longPressTicks = longPressMs / tickMs
	}

	if b.longPressTicks == 0 {
		b.mode = ShortPressMode
	} else {
		b.mode = LongPressMode
	}
	b.state = Released
}

// Tick advances the state machine by one tick with the current sample.
// pressed must already be polarity-normalized: true means the button is down.
func (b *Button) Tick(pressed bool) {
	switch b.state {
	case Released:
		if !pressed {
			return
		}
		if b.pressDebounceTicks == 0 {
			// Debounced externally (hardware RC, etc).
			b.confirmPress()
			return
		}
		b.debounceCounter = 0
		b.state = DebouncingPress

	case DebouncingPress:
		b.debounceCounter++
		if b.debounceCounter < b.pressDebounceTicks {
			return
		}
		if pressed {
			b.confirmPress()
		} else {
			b.state = Released
		}

	case Held:
		if pressed {
			if b.mode == LongPressMode && b.longPressCounter < b.longPressTicks {
				b.longPressCounter++
				if b.longPressCounter == b.longPressTicks {
					b.longPress = true
				}
			}
			return
		}
		if b.releaseDebounceTicks == 0 {
			b.confirmRelease()
			return
		}
		b.debounceCounter = 0
		b.state = DebouncingRelease

	case DebouncingRelease:
		b.debounceCounter++
		if b.debounceCounter < b.releaseDebounceTicks {
			return
		}
		if pressed {
			b.state = Held
		} else {
			b.confirmRelease()
		}
	}
}

func (b *Button) confirmPress() {
	if b.mode == ShortPressMode {
		b.shortPress = true
	}
	b.buttonDown = true
	b.longPressCounter = 0
	b.state = Held
}

func (b *Button) confirmRelease() {
	// Released before the long-press threshold: it was a short press after all.
	if b.mode == LongPressMode && b.longPressCounter < b.longPressTicks {
		b.shortPress = true
	}
	b.buttonUp = true
	b.state = Released
}

// ShortPress reports whether a short press was detected since the last clear.
func (b *Button) ShortPress() bool { return b.shortPress }

// LongPress reports whether a long press was detected since the last clear.
func (b *Button) LongPress() bool { return b.longPress }

// ButtonDownEvent reports whether a debounced press edge occurred since the last clear.
func (b *Button) ButtonDownEvent() bool { return b.buttonDown }

// ButtonUpEvent reports whether a debounced release edge occurred since the last clear.
func (b *Button) ButtonUpEvent() bool { return b.buttonUp }

func (b *Button) ClearShortPress() { b.shortPress = false }
func (b *Button) ClearLongPress()  { b.longPress = false }
func (b *Button) ClearButtonDown() { b.buttonDown = false }
func (b *Button) ClearButtonUp()   { b.buttonUp = false }

// Collect returns the raised flags as events and clears each one it returns.
// Order is down, long press, short press, up, which is the order they can
// occur within one press.
func (b *Button) Collect() []Event {
	var events []Event
	if b.ButtonDownEvent() {
		events = append(events, EventButtonDown)
		b.ClearButtonDown()
	}
	if b.LongPress() {
		events = append(events, EventLongPress)
		b.ClearLongPress()
	}
	if b.ShortPress() {
		events = append(events, EventShortPress)
		b.ClearShortPress()
	}
	if b.ButtonUpEvent() {
		events = append(events, EventButtonUp)
		b.ClearButtonUp()
	}
	return events
}

// State returns the current state machine position.
func (b *Button) State() State { return b.state }

// Mode returns the press classification mode chosen at initialization.
func (b *Button) Mode() Mode { return b.mode }

func (b *Button) PressDebounceTicks() uint32   { return b.pressDebounceTicks }
func (b *Button) ReleaseDebounceTicks() uint32 { return b.releaseDebounceTicks }
func (b *Button) LongPressTicks() uint32       { return b.longPressTicks }
