package sqlxrepos

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/matludke/tempocerto/core/user"
)

type (
	userRepository struct {
		db *sqlx.DB
	}

	userRow struct {
		ID           string       `db:"id"`
		Name         string       `db:"name"`
		Email        string       `db:"email"`
		IsActive     bool         `db:"is_active"`
		PasswordHash []byte       `db:"password_hash"`
		CreatedAt    sql.NullTime `db:"created_at"`
		UpdatedAt    sql.NullTime `db:"updated_at"`
		LastLogin    sql.NullTime `db:"last_login"`
	}
)

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) row(usr user.User) userRow {
	r := userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Email:        usr.Email,
		IsActive:     true,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    sql.NullTime{Time: usr.CreatedAt.UTC(), Valid: !usr.CreatedAt.IsZero()},
		UpdatedAt:    sql.NullTime{Time: usr.UpdatedAt.UTC(), Valid: !usr.UpdatedAt.IsZero()},
		LastLogin:    sql.NullTime{Time: usr.LastLogin.UTC(), Valid: !usr.LastLogin.IsZero()},
	}
	if usr.IsActive != nil {
		r.IsActive = *usr.IsActive
	}
	return r
}

func (repo *userRepository) unrow(r userRow) user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		IsActive:     &r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
		LastLogin:    r.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo *userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckEmailUniqueness(email string, excludedUsers ...user.User) error {
	q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		q += ` AND id != ALL($2::uuid[])`
		args = append(args, pq.Array(ids))
	}
	q += `)`

	var exists bool
	if err := repo.db.Get(&exists, q, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	r := repo.row(usr)
	_, err := repo.db.NamedExec(
		`INSERT INTO "user" (id, name, email, is_active, password_hash, created_at, updated_at)
		 VALUES (:id, :name, :email, :is_active, :password_hash, :created_at, :updated_at)`, r)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unrow(r), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var r userRow
	if err := repo.db.Get(&r, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return repo.unrow(r), nil
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	var r userRow
	if err := repo.db.Get(&r, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return repo.unrow(r), nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var rs []userRow
	if err := repo.db.Select(&rs, `SELECT * FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rs))
	for _, r := range rs {
		users = append(users, repo.unrow(r))
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	// only save set fields
	orig, err := repo.GetUserByID(usr.ID)
	if err != nil {
		return user.User{}, err
	}
	if usr.Name == "" {
		usr.Name = orig.Name
	}
	if usr.Email == "" {
		usr.Email = orig.Email
	}
	if usr.PasswordHash == nil {
		usr.PasswordHash = orig.PasswordHash
	}
	if isActive == nil {
		isActive = orig.IsActive
	}
	usr.IsActive = isActive
	usr.CreatedAt = orig.CreatedAt
	if usr.LastLogin.IsZero() {
		usr.LastLogin = orig.LastLogin
	}

	r := repo.row(usr)
	_, err = repo.db.NamedExec(
		`UPDATE "user"
		 SET name = :name, email = :email, is_active = :is_active, password_hash = :password_hash,
		     updated_at = :updated_at, last_login = :last_login
		 WHERE id = :id`, r)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return repo.unrow(r), nil
}

func (repo *userRepository) DeleteUsersByID(ids ...string) error {
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
