package dummydb

import (
	"github.com/matludke/tempocerto/core/user"
)

type codeRepository struct {
	db *loginCodeTable
}

var _ user.CodeRepository = (*codeRepository)(nil) // interface compliance check

func NewCodeRepository(db *DB) user.CodeRepository {
	return &codeRepository{db: db.loginCode}
}

func (repo *codeRepository) SaveLoginCode(lc user.LoginCode) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[lc.Email] = &lc
	return nil
}

func (repo *codeRepository) GetLoginCode(email string) (user.LoginCode, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if lc, ok := repo.db.table[email]; ok {
		return *lc, nil
	}
	return user.LoginCode{}, user.ErrCodeNotFound
}

func (repo *codeRepository) DeleteLoginCode(email string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, email)
	return nil
}
