package study

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core"
	"github.com/matludke/tempocerto/core/activity"
	"github.com/matludke/tempocerto/core/user"
)

type TimerMode string

const (
	ModeFocus      TimerMode = "focus"
	ModeShortBreak TimerMode = "short-break"
	ModeLongBreak  TimerMode = "long-break"
)

const (
	FocusTime      = 25 * time.Minute
	ShortBreakTime = 5 * time.Minute
	LongBreakTime  = 15 * time.Minute

	// FocusIntervalsBeforeLongBreak is how many focus intervals earn a long break.
	FocusIntervalsBeforeLongBreak = 4
)

var (
	// errors
	ErrTimerNotAuthenticated = errors.New("sign in to start the timer")
	ErrTimerNoActivity       = errors.New("select an activity to focus on")
	ErrTimerActivityDone     = errors.New("cannot focus on a done activity")
)

// Timer is the Pomodoro countdown state machine. It is transient, per-client
// state: nothing about it is persisted, only the study sessions it records on
// completed focus intervals.
//
// The countdown is driven by Tick, once per elapsed second; Run drives it
// from a real ticker, tests call Tick directly.
type Timer struct {
	mu       sync.Mutex
	recorder SessionRecorder
	logger   core.Logger

	usr user.User
	act *activity.Activity

	mode           TimerMode
	remaining      int // seconds
	completedFocus int
	running        bool
	startedAt      time.Time // wall-clock start of the current interval
}

func NewTimer(usr user.User, recorder SessionRecorder, logger core.Logger) *Timer {
	return &Timer{
		recorder:  recorder,
		logger:    logger,
		usr:       usr,
		mode:      ModeFocus,
		remaining: int(FocusTime / time.Second),
	}
}

// SelectActivity picks the activity the next focus interval is charged to.
func (t *Timer) SelectActivity(act activity.Activity) {
	t.mu.Lock()
	t.act = &act
	t.mu.Unlock()
}

// Start begins or resumes the countdown. In focus mode it requires an
// authenticated user and a selected, non-done activity. No effect when
// already running.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil
	}
	if t.usr.ID == "" {
		return ErrTimerNotAuthenticated
	}
	if t.mode == ModeFocus {
		if t.act == nil {
			return ErrTimerNoActivity
		}
		if t.act.IsDone() {
			return ErrTimerActivityDone
		}
	}

	if t.startedAt.IsZero() {
		t.startedAt = nowFunc().UTC()
	}
	t.running = true
	return nil
}

// Pause halts the countdown without resetting anything. Idempotent.
func (t *Timer) Pause() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

// Reset returns the timer to a fresh focus interval and clears the
// completed-focus counter.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = false
	t.mode = ModeFocus
	t.remaining = int(FocusTime / time.Second)
	t.completedFocus = 0
	t.startedAt = time.Time{}
}

// Tick advances the countdown by one second. On reaching zero it stops,
// records the study session when the finished interval was focus, and
// transitions to the next mode. A failed session write is reported but never
// blocks the transition.
func (t *Timer) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.remaining--
	if t.remaining > 0 {
		return
	}
	t.remaining = 0
	t.running = false

	if t.mode == ModeFocus {
		t.completedFocus++
		t.logFocusSession()
		if t.completedFocus%FocusIntervalsBeforeLongBreak == 0 {
			t.mode = ModeLongBreak
			t.remaining = int(LongBreakTime / time.Second)
		} else {
			t.mode = ModeShortBreak
			t.remaining = int(ShortBreakTime / time.Second)
		}
	} else {
		t.mode = ModeFocus
		t.remaining = int(FocusTime / time.Second)
	}
	t.startedAt = time.Time{}
}

func (t *Timer) logFocusSession() {
	end := nowFunc().UTC()
	start := t.startedAt
	if start.IsZero() {
		start = end.Add(-FocusTime)
	}

	if _, err := t.recorder.Log(t.usr, *t.act, start, end, int(FocusTime/time.Minute)); err != nil {
		t.logger.Error(fmt.Sprintf("logging study session: %v", err), err, t.usr)
	}
}

// Run drives the countdown from a real one-second ticker until ctx is done.
func (t *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}

// Read-only state for rendering.

func (t *Timer) Mode() TimerMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

func (t *Timer) RemainingSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) CompletedFocusCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completedFocus
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// TotalSeconds is the full length of the current mode, for proportional
// progress rendering.
func (t *Timer) TotalSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.mode {
	case ModeShortBreak:
		return int(ShortBreakTime / time.Second)
	case ModeLongBreak:
		return int(LongBreakTime / time.Second)
	default:
		return int(FocusTime / time.Second)
	}
}
