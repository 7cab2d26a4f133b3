package session

// TimerDuration is the per-question countdown length in ticks.
const TimerDuration = 15

// LowTimeThreshold marks the last ticks used for the urgency cue.
const LowTimeThreshold = 5

// TimerPhase is the lifecycle of one question's countdown.
// Frozen and Expired are both terminal; a new question gets a fresh timer.
type TimerPhase int

const (
	TimerRunning TimerPhase = iota
	TimerFrozen
	TimerExpired
)

func (p TimerPhase) String() string {
	switch p {
	case TimerRunning:
		return "running"
	case TimerFrozen:
		return "frozen"
	case TimerExpired:
		return "expired"
	}
	return "unknown"
}

// Timer is the per-question countdown. It only decrements while Running;
// selecting an option freezes it, reaching zero expires it exactly once.
type Timer struct {
	Phase     TimerPhase `json:"phase"`
	Remaining int        `json:"remaining"`
}

// NewTimer returns a fresh Running timer at full duration.
func NewTimer() Timer {
	return Timer{Phase: TimerRunning, Remaining: TimerDuration}
}

// TickCue describes what one elapsed time unit produced.
type TickCue struct {
	Remaining int  `json:"remaining"`
	Low       bool `json:"low"`
	Expired   bool `json:"expired"`
}

// Tick consumes one time unit. It is a no-op unless the timer is Running.
// The Low flag distinguishes ticks at or below the urgency threshold.
func (t *Timer) Tick() (TickCue, bool) {
	if t.Phase != TimerRunning || t.Remaining <= 0 {
		return TickCue{}, false
	}
	t.Remaining--
	cue := TickCue{
		Remaining: t.Remaining,
		Low:       t.Remaining <= LowTimeThreshold,
	}
	if t.Remaining == 0 {
		t.Phase = TimerExpired
		cue.Expired = true
	}
	return cue, true
}

// Freeze stops the countdown without resetting it. Only a Running timer
// can be frozen; expiry is not overridden.
func (t *Timer) Freeze() {
	if t.Phase == TimerRunning {
		t.Phase = TimerFrozen
	}
}
