package activity

import (
	"github.com/go-playground/validator/v10"

	"github.com/matludke/tempocerto/core"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Activity is a user-defined study task. Owned exclusively by one user.
type Activity struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	Title             string `json:"title"`
	Subject           string `json:"subject"`
	EstimatedDuration int    `json:"estimated_duration"` // minutes
	Priority          string `json:"priority"`
	Status            string `json:"status"`
}

func (a Activity) IsDone() bool { return a.Status == StatusDone }

// NewActivity contains information needed to create a new Activity.
type NewActivity struct {
	Title             string `json:"title" validate:"required"`
	Subject           string `json:"subject" validate:"required"`
	EstimatedDuration int    `json:"estimated_duration" validate:"required,gt=0"`
	Priority          string `json:"priority" validate:"required,oneof=low medium high"`
	Status            string `json:"status" validate:"omitempty,oneof=todo in-progress done"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Subject = core.CleanString(na.Subject)
	if na.Status == "" {
		na.Status = StatusTodo
	}
	return validate.Struct(na)
}

// UpdateActivity defines what information may be provided to modify an existing Activity.
type UpdateActivity struct {
	Title             string `json:"title"`
	Subject           string `json:"subject"`
	EstimatedDuration *int   `json:"estimated_duration" validate:"omitempty,gt=0"`
	Priority          string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status            string `json:"status" validate:"omitempty,oneof=todo in-progress done"`
}

func (ua *UpdateActivity) Validate(orig Activity, validate *validator.Validate) error {
	title := core.CleanString(ua.Title)
	if title != "" {
		ua.Title = title
	} else {
		ua.Title = orig.Title
	}

	subject := core.CleanString(ua.Subject)
	if subject != "" {
		ua.Subject = subject
	} else {
		ua.Subject = orig.Subject
	}

	if ua.EstimatedDuration == nil {
		ua.EstimatedDuration = &orig.EstimatedDuration
	}
	if ua.Priority == "" {
		ua.Priority = orig.Priority
	}
	if ua.Status == "" {
		ua.Status = orig.Status
	}
	return validate.Struct(ua)
}
