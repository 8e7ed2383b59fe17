package study

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core"
	"github.com/matludke/tempocerto/core/activity"
	"github.com/matludke/tempocerto/core/user"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound         = errors.New("study session not found")
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrActivityDone     = errors.New("cannot log a session for a done activity")
	ErrNotOwner         = errors.New("activity belongs to another user")
)

type (
	Repository interface {
		CreateSession(s Session) (Session, error)
		QuerySessionsByUser(userID string) ([]Session, error)
	}

	// SessionRecorder is the narrow surface the study timer needs.
	SessionRecorder interface {
		Log(usr user.User, act activity.Activity, start, end time.Time, durationMins int) (Session, error)
	}

	Service interface {
		SessionRecorder
		QueryByUser(usr user.User) ([]Session, error)
		Report(usr user.User) (Report, error)
		Summary(ctx context.Context, usr user.User) (string, error)
	}

	service struct {
		repo    Repository
		actSvc  activity.Service
		textGen core.TextGenerator
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, actSvc activity.Service, textGen core.TextGenerator) Service {
	return &service{
		repo:    repo,
		actSvc:  actSvc,
		textGen: textGen,
	}
}

// Log persists a completed focus interval. It refuses to record anything
// without an authenticated user or against a done or foreign activity; the
// subject is copied from the activity at logging time.
func (svc *service) Log(usr user.User, act activity.Activity, start, end time.Time, durationMins int) (Session, error) {
	if usr.ID == "" {
		return Session{}, ErrNotAuthenticated
	}
	if act.UserID != usr.ID {
		return Session{}, ErrNotOwner
	}
	if act.IsDone() {
		return Session{}, ErrActivityDone
	}

	s := Session{
		ActivityID: act.ID,
		UserID:     usr.ID,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		Duration:   durationMins,
		Subject:    act.Subject,
	}
	return svc.repo.CreateSession(s)
}

func (svc *service) QueryByUser(usr user.User) ([]Session, error) {
	if usr.ID == "" {
		return []Session{}, nil
	}
	return svc.repo.QuerySessionsByUser(usr.ID)
}

func (svc *service) Report(usr user.User) (Report, error) {
	sessions, err := svc.QueryByUser(usr)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying sessions")
	}
	activities, err := svc.actSvc.QueryByUser(usr)
	if err != nil {
		return Report{}, errors.Wrap(err, "querying activities")
	}
	return Report{
		BySubject: AggregateBySubject(sessions),
		Stats:     ComputeStats(sessions, activities),
	}, nil
}

// Summary asks the text-generation service for a short study-coach write-up
// of the user's sessions.
func (svc *service) Summary(ctx context.Context, usr user.User) (string, error) {
	sessions, err := svc.QueryByUser(usr)
	if err != nil {
		return "", errors.Wrap(err, "querying sessions")
	}
	summary, err := svc.textGen.Generate(ctx, summaryPrompt(sessions))
	if err != nil {
		return "", errors.Wrap(err, "generating summary")
	}
	return summary, nil
}

func summaryPrompt(sessions []Session) string {
	b := new(strings.Builder)
	b.WriteString("You are a motivational and analytical study coach. ")
	b.WriteString("Analyze the list of study sessions below and produce a concise summary (2-3 sentences). ")
	b.WriteString("Start with positive reinforcement, highlight the total study time or the most focused subject, ")
	b.WriteString("and offer one useful suggestion for the next sessions. ")
	b.WriteString("Do not list each session; write one cohesive, friendly paragraph.\n\n")
	b.WriteString("Study session data:\n")
	for _, s := range sessions {
		fmt.Fprintf(b, "- Subject: %s, Duration: %d minutes.\n", s.Subject, s.Duration)
	}
	return b.String()
}
