package sqlxrepos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core/activity"
)

type (
	activityRepository struct {
		db *sqlx.DB
	}

	activityRow struct {
		ID                string `db:"id"`
		UserID            string `db:"user_id"`
		Title             string `db:"title"`
		Subject           string `db:"subject"`
		EstimatedDuration int    `db:"estimated_duration"`
		Priority          string `db:"priority"`
		Status            string `db:"status"`
	}
)

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *sqlx.DB) activity.Repository {
	return &activityRepository{db: db}
}

func (repo *activityRepository) row(act activity.Activity) activityRow {
	return activityRow{
		ID:                act.ID,
		UserID:            act.UserID,
		Title:             act.Title,
		Subject:           act.Subject,
		EstimatedDuration: act.EstimatedDuration,
		Priority:          act.Priority,
		Status:            act.Status,
	}
}

func (repo *activityRepository) unrow(r activityRow) activity.Activity {
	return activity.Activity{
		ID:                r.ID,
		UserID:            r.UserID,
		Title:             r.Title,
		Subject:           r.Subject,
		EstimatedDuration: r.EstimatedDuration,
		Priority:          r.Priority,
		Status:            r.Status,
	}
}

func (repo *activityRepository) CreateActivity(act activity.Activity) (activity.Activity, error) {
	act.ID = uuid.New().String()
	r := repo.row(act)
	_, err := repo.db.NamedExec(
		`INSERT INTO activity (id, user_id, title, subject, estimated_duration, priority, status)
		 VALUES (:id, :user_id, :title, :subject, :estimated_duration, :priority, :status)`, r)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "inserting activity")
	}
	return repo.unrow(r), nil
}

func (repo *activityRepository) GetActivityByID(id string) (activity.Activity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return activity.Activity{}, activity.ErrNotFound
	}
	var r activityRow
	if err := repo.db.Get(&r, `SELECT * FROM activity WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return activity.Activity{}, activity.ErrNotFound
		}
		return activity.Activity{}, errors.Wrap(err, "finding activity")
	}
	return repo.unrow(r), nil
}

func (repo *activityRepository) QueryActivitiesByUser(userID string) ([]activity.Activity, error) {
	var rs []activityRow
	if err := repo.db.Select(&rs, `SELECT * FROM activity WHERE user_id = $1 ORDER BY title`, userID); err != nil {
		return nil, errors.Wrap(err, "querying activities")
	}
	acts := make([]activity.Activity, 0, len(rs))
	for _, r := range rs {
		acts = append(acts, repo.unrow(r))
	}
	return acts, nil
}

func (repo *activityRepository) UpdateActivity(act activity.Activity) (activity.Activity, error) {
	r := repo.row(act)
	res, err := repo.db.NamedExec(
		`UPDATE activity
		 SET title = :title, subject = :subject, estimated_duration = :estimated_duration,
		     priority = :priority, status = :status
		 WHERE id = :id`, r)
	if err != nil {
		return activity.Activity{}, errors.Wrap(err, "updating activity")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return activity.Activity{}, activity.ErrNotFound
	}
	return repo.unrow(r), nil
}

func (repo *activityRepository) DeleteActivity(id string) error {
	if _, err := repo.db.Exec(`DELETE FROM activity WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return nil
}
