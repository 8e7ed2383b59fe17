package dummydb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/matludke/tempocerto/core/study"
)

type studyRepository struct {
	db *sessionTable
}

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(db *DB) study.Repository {
	return &studyRepository{db: db.session}
}

func (repo *studyRepository) CreateSession(s study.Session) (study.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = uuid.New().String()
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *studyRepository) QuerySessionsByUser(userID string) ([]study.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]study.Session, 0)
	for _, s := range repo.db.table {
		if s.UserID == userID {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartTime.Before(sessions[j].StartTime) })
	return sessions, nil
}
