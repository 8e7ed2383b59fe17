package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core/study"
)

type (
	studyRepository struct {
		db *sqlx.DB
	}

	sessionRow struct {
		ID         string         `db:"id"`
		ActivityID sql.NullString `db:"activity_id"`
		UserID     string         `db:"user_id"`
		StartTime  time.Time      `db:"start_time"`
		EndTime    time.Time      `db:"end_time"`
		Duration   int            `db:"duration"`
		Subject    string         `db:"subject"`
	}
)

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(db *sqlx.DB) study.Repository {
	return &studyRepository{db: db}
}

func (repo *studyRepository) row(s study.Session) sessionRow {
	return sessionRow{
		ID:         s.ID,
		ActivityID: sql.NullString{String: s.ActivityID, Valid: s.ActivityID != ""},
		UserID:     s.UserID,
		StartTime:  s.StartTime.UTC(),
		EndTime:    s.EndTime.UTC(),
		Duration:   s.Duration,
		Subject:    s.Subject,
	}
}

func (repo *studyRepository) unrow(r sessionRow) study.Session {
	return study.Session{
		ID:         r.ID,
		ActivityID: r.ActivityID.String,
		UserID:     r.UserID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Duration:   r.Duration,
		Subject:    r.Subject,
	}
}

func (repo *studyRepository) CreateSession(s study.Session) (study.Session, error) {
	s.ID = uuid.New().String()
	r := repo.row(s)
	_, err := repo.db.NamedExec(
		`INSERT INTO study_session (id, activity_id, user_id, start_time, end_time, duration, subject)
		 VALUES (:id, :activity_id, :user_id, :start_time, :end_time, :duration, :subject)`, r)
	if err != nil {
		return study.Session{}, errors.Wrap(err, "inserting study session")
	}
	return repo.unrow(r), nil
}

func (repo *studyRepository) QuerySessionsByUser(userID string) ([]study.Session, error) {
	var rs []sessionRow
	if err := repo.db.Select(&rs, `SELECT * FROM study_session WHERE user_id = $1 ORDER BY start_time`, userID); err != nil {
		return nil, errors.Wrap(err, "querying study sessions")
	}
	sessions := make([]study.Session, 0, len(rs))
	for _, r := range rs {
		sessions = append(sessions, repo.unrow(r))
	}
	return sessions, nil
}
