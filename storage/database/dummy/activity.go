package dummydb

import (
	"sort"

	"github.com/google/uuid"

	"github.com/matludke/tempocerto/core/activity"
)

type activityRepository struct {
	db *activityTable
}

var _ activity.Repository = (*activityRepository)(nil) // interface compliance check

func NewActivityRepository(db *DB) activity.Repository {
	return &activityRepository{db: db.activity}
}

func (repo *activityRepository) CreateActivity(act activity.Activity) (activity.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	act.ID = uuid.New().String()
	repo.db.table[act.ID] = &act
	return act, nil
}

func (repo *activityRepository) GetActivityByID(id string) (activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if act, ok := repo.db.table[id]; ok {
		return *act, nil
	}
	return activity.Activity{}, activity.ErrNotFound
}

func (repo *activityRepository) QueryActivitiesByUser(userID string) ([]activity.Activity, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	acts := make([]activity.Activity, 0)
	for _, act := range repo.db.table {
		if act.UserID == userID {
			acts = append(acts, *act)
		}
	}
	sort.Slice(acts, func(i, j int) bool { return acts[i].Title < acts[j].Title })
	return acts, nil
}

func (repo *activityRepository) UpdateActivity(act activity.Activity) (activity.Activity, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[act.ID]; !ok {
		return activity.Activity{}, activity.ErrNotFound
	}
	repo.db.table[act.ID] = &act
	return act, nil
}

func (repo *activityRepository) DeleteActivity(id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, id)
	return nil
}
