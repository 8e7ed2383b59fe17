package study

import (
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core/activity"
	"github.com/matludke/tempocerto/core/user"
	logsvc "github.com/matludke/tempocerto/services/logger"
)

type recorderFake struct {
	logged []Session
	err    error
}

var _ SessionRecorder = (*recorderFake)(nil)

func (r *recorderFake) Log(usr user.User, act activity.Activity, start, end time.Time, durationMins int) (Session, error) {
	if r.err != nil {
		return Session{}, r.err
	}
	s := Session{
		ActivityID: act.ID,
		UserID:     usr.ID,
		StartTime:  start,
		EndTime:    end,
		Duration:   durationMins,
		Subject:    act.Subject,
	}
	r.logged = append(r.logged, s)
	return s, nil
}

func testUser() user.User {
	return user.User{ID: "usr-1", Name: "Hero", Email: "hero@test.cd"}
}

func testActivity(status string) activity.Activity {
	return activity.Activity{
		ID:      "act-1",
		UserID:  "usr-1",
		Title:   "Limits and derivatives",
		Subject: "Math",
		Status:  status,
	}
}

func newTestTimer(usr user.User, rec *recorderFake) *Timer {
	return NewTimer(usr, rec, logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0)))
}

// completeInterval runs the current interval down to zero.
func completeInterval(t *testing.T, tm *Timer) {
	t.Helper()
	if err := tm.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	for i := tm.RemainingSeconds(); i > 0; i-- {
		tm.Tick()
	}
}

func TestTimerStart(t *testing.T) {
	tests := []struct {
		name    string
		usr     user.User
		act     *activity.Activity
		wantErr error
	}{
		{name: "unauthenticated", wantErr: ErrTimerNotAuthenticated},
		{name: "no activity selected", usr: testUser(), wantErr: ErrTimerNoActivity},
		{
			name:    "done activity",
			usr:     testUser(),
			act:     func() *activity.Activity { a := testActivity(activity.StatusDone); return &a }(),
			wantErr: ErrTimerActivityDone,
		},
		{
			name: "ok",
			usr:  testUser(),
			act:  func() *activity.Activity { a := testActivity(activity.StatusInProgress); return &a }(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := newTestTimer(tt.usr, &recorderFake{})
			if tt.act != nil {
				tm.SelectActivity(*tt.act)
			}
			if err := tm.Start(); err != tt.wantErr {
				t.Errorf("Start() error = %v; wantErr %v", err, tt.wantErr)
			}
			if wantRunning := tt.wantErr == nil; tm.Running() != wantRunning {
				t.Errorf("Running() = %v; want %v", tm.Running(), wantRunning)
			}
		})
	}
}

func TestTimerStart_noEffectWhenRunning(t *testing.T) {
	tm := newTestTimer(testUser(), &recorderFake{})
	tm.SelectActivity(testActivity(activity.StatusTodo))

	if err := tm.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	tm.Tick()
	before := tm.RemainingSeconds()

	if err := tm.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if got := tm.RemainingSeconds(); got != before {
		t.Errorf("RemainingSeconds() = %d; want %d", got, before)
	}
}

func TestTimerPause(t *testing.T) {
	tm := newTestTimer(testUser(), &recorderFake{})
	tm.SelectActivity(testActivity(activity.StatusTodo))

	if err := tm.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	tm.Tick()
	tm.Pause()
	tm.Pause() // idempotent

	remaining := tm.RemainingSeconds()
	tm.Tick() // no effect while paused
	if got := tm.RemainingSeconds(); got != remaining {
		t.Errorf("RemainingSeconds() = %d; want %d", got, remaining)
	}
	if tm.Running() {
		t.Error("Running() = true after Pause()")
	}

	// resuming keeps the countdown where it was
	if err := tm.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	tm.Tick()
	if got := tm.RemainingSeconds(); got != remaining-1 {
		t.Errorf("RemainingSeconds() = %d; want %d", got, remaining-1)
	}
}

func TestTimerFocusCompletion(t *testing.T) {
	rec := &recorderFake{}
	tm := newTestTimer(testUser(), rec)
	tm.SelectActivity(testActivity(activity.StatusInProgress))

	completeInterval(t, tm)

	if got := tm.Mode(); got != ModeShortBreak {
		t.Errorf("Mode() = %v; want %v", got, ModeShortBreak)
	}
	if got := tm.RemainingSeconds(); got != int(ShortBreakTime/time.Second) {
		t.Errorf("RemainingSeconds() = %d; want %d", got, int(ShortBreakTime/time.Second))
	}
	if got := tm.CompletedFocusCount(); got != 1 {
		t.Errorf("CompletedFocusCount() = %d; want 1", got)
	}
	if tm.Running() {
		t.Error("Running() = true after interval completion")
	}

	if len(rec.logged) != 1 {
		t.Fatalf("logged sessions = %d; want 1", len(rec.logged))
	}
	s := rec.logged[0]
	if s.Subject != "Math" {
		t.Errorf("Subject = %q; want Math", s.Subject)
	}
	if s.Duration != int(FocusTime/time.Minute) {
		t.Errorf("Duration = %d; want %d", s.Duration, int(FocusTime/time.Minute))
	}
	if s.EndTime.Before(s.StartTime) {
		t.Errorf("EndTime %v before StartTime %v", s.EndTime, s.StartTime)
	}
}

func TestTimerLongBreakEveryFourthFocus(t *testing.T) {
	rec := &recorderFake{}
	tm := newTestTimer(testUser(), rec)
	tm.SelectActivity(testActivity(activity.StatusInProgress))

	for i := 1; i <= FocusIntervalsBeforeLongBreak; i++ {
		completeInterval(t, tm) // focus

		wantMode := ModeShortBreak
		if i == FocusIntervalsBeforeLongBreak {
			wantMode = ModeLongBreak
		}
		if got := tm.Mode(); got != wantMode {
			t.Fatalf("after focus #%d: Mode() = %v; want %v", i, got, wantMode)
		}

		completeInterval(t, tm) // break
		if got := tm.Mode(); got != ModeFocus {
			t.Fatalf("after break #%d: Mode() = %v; want %v", i, got, ModeFocus)
		}
	}

	// breaks never log sessions
	if len(rec.logged) != FocusIntervalsBeforeLongBreak {
		t.Errorf("logged sessions = %d; want %d", len(rec.logged), FocusIntervalsBeforeLongBreak)
	}
}

func TestTimerLoggingFailureDoesNotBlockTransition(t *testing.T) {
	rec := &recorderFake{err: errors.New("store unavailable")}
	tm := newTestTimer(testUser(), rec)
	tm.SelectActivity(testActivity(activity.StatusInProgress))

	completeInterval(t, tm)

	if got := tm.Mode(); got != ModeShortBreak {
		t.Errorf("Mode() = %v; want %v", got, ModeShortBreak)
	}
	if got := tm.CompletedFocusCount(); got != 1 {
		t.Errorf("CompletedFocusCount() = %d; want 1", got)
	}
}

func TestTimerReset(t *testing.T) {
	tm := newTestTimer(testUser(), &recorderFake{})
	tm.SelectActivity(testActivity(activity.StatusInProgress))

	completeInterval(t, tm)
	tm.Reset()

	if got := tm.Mode(); got != ModeFocus {
		t.Errorf("Mode() = %v; want %v", got, ModeFocus)
	}
	if got := tm.RemainingSeconds(); got != int(FocusTime/time.Second) {
		t.Errorf("RemainingSeconds() = %d; want %d", got, int(FocusTime/time.Second))
	}
	if got := tm.CompletedFocusCount(); got != 0 {
		t.Errorf("CompletedFocusCount() = %d; want 0", got)
	}
	if tm.Running() {
		t.Error("Running() = true after Reset()")
	}
}
