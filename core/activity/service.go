package activity

import (
	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core/user"
)

var (
	// errors
	ErrNotFound  = errors.New("activity not found")
	ErrForbidden = errors.New("activity belongs to another user")
)

type (
	Repository interface {
		CreateActivity(act Activity) (Activity, error)
		GetActivityByID(id string) (Activity, error)
		QueryActivitiesByUser(userID string) ([]Activity, error)
		UpdateActivity(act Activity) (Activity, error)
		DeleteActivity(id string) error
	}

	Service interface {
		Create(usr user.User, na NewActivity) (Activity, error)
		GetByID(usr user.User, id string) (Activity, error)
		QueryByUser(usr user.User) ([]Activity, error)
		Update(usr user.User, id string, ua UpdateActivity) (Activity, error)
		Delete(usr user.User, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create persists a new activity owned by usr. An authenticated user is a
// hard precondition, not an HTTP-layer concern.
func (svc *service) Create(usr user.User, na NewActivity) (Activity, error) {
	if usr.ID == "" {
		return Activity{}, user.ErrNotFound
	}
	act := Activity{
		UserID:            usr.ID,
		Title:             na.Title,
		Subject:           na.Subject,
		EstimatedDuration: na.EstimatedDuration,
		Priority:          na.Priority,
		Status:            na.Status,
	}
	return svc.repo.CreateActivity(act)
}

// GetByID fetches an activity and checks ownership. A foreign activity is
// reported as not found to avoid leaking its existence.
func (svc *service) GetByID(usr user.User, id string) (Activity, error) {
	act, err := svc.repo.GetActivityByID(id)
	if err != nil {
		return Activity{}, err
	}
	if act.UserID != usr.ID {
		return Activity{}, ErrNotFound
	}
	return act, nil
}

func (svc *service) QueryByUser(usr user.User) ([]Activity, error) {
	if usr.ID == "" {
		return []Activity{}, nil
	}
	return svc.repo.QueryActivitiesByUser(usr.ID)
}

func (svc *service) Update(usr user.User, id string, ua UpdateActivity) (Activity, error) {
	act, err := svc.GetByID(usr, id)
	if err != nil {
		return Activity{}, err
	}

	act.Title = ua.Title
	act.Subject = ua.Subject
	if ua.EstimatedDuration != nil {
		act.EstimatedDuration = *ua.EstimatedDuration
	}
	act.Priority = ua.Priority
	act.Status = ua.Status
	return svc.repo.UpdateActivity(act)
}

func (svc *service) Delete(usr user.User, id string) error {
	if _, err := svc.GetByID(usr, id); err != nil {
		return err
	}
	return svc.repo.DeleteActivity(id)
}
