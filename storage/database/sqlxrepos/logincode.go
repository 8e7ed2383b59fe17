package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core/user"
)

type (
	codeRepository struct {
		db *sqlx.DB
	}

	loginCodeRow struct {
		Email     string    `db:"email"`
		Code      string    `db:"code"`
		ExpiresAt time.Time `db:"expires_at"`
	}
)

var _ user.CodeRepository = (*codeRepository)(nil) // interface compliance check

func NewCodeRepository(db *sqlx.DB) user.CodeRepository {
	return &codeRepository{db: db}
}

func (repo *codeRepository) SaveLoginCode(lc user.LoginCode) error {
	r := loginCodeRow{Email: lc.Email, Code: lc.Code, ExpiresAt: lc.ExpiresAt.UTC()}
	_, err := repo.db.NamedExec(
		`INSERT INTO login_code (email, code, expires_at)
		 VALUES (:email, :code, :expires_at)
		 ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at`, r)
	if err != nil {
		return errors.Wrap(err, "saving login code")
	}
	return nil
}

func (repo *codeRepository) GetLoginCode(email string) (user.LoginCode, error) {
	var r loginCodeRow
	if err := repo.db.Get(&r, `SELECT * FROM login_code WHERE email = $1`, email); err != nil {
		if err == sql.ErrNoRows {
			return user.LoginCode{}, user.ErrCodeNotFound
		}
		return user.LoginCode{}, errors.Wrap(err, "finding login code")
	}
	return user.LoginCode{Email: r.Email, Code: r.Code, ExpiresAt: r.ExpiresAt}, nil
}

func (repo *codeRepository) DeleteLoginCode(email string) error {
	if _, err := repo.db.Exec(`DELETE FROM login_code WHERE email = $1`, email); err != nil {
		return errors.Wrap(err, "deleting login code")
	}
	return nil
}
