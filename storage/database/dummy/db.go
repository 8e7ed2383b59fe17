package dummydb

import (
	"sync"

	"github.com/matludke/tempocerto/core/activity"
	"github.com/matludke/tempocerto/core/study"
	"github.com/matludke/tempocerto/core/user"
)

type (
	DB struct {
		user      *userTable
		loginCode *loginCodeTable
		activity  *activityTable
		session   *sessionTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	loginCodeTable struct {
		sync.RWMutex
		table map[string]*user.LoginCode // keyed by email
	}

	activityTable struct {
		sync.RWMutex
		table map[string]*activity.Activity
	}

	sessionTable struct {
		sync.RWMutex
		table map[string]*study.Session
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		loginCode: &loginCodeTable{table: make(map[string]*user.LoginCode)},
		activity:  &activityTable{table: make(map[string]*activity.Activity)},
		session:   &sessionTable{table: make(map[string]*study.Session)},
	}
	return db, nil
}
