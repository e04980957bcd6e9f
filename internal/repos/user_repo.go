package repos

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/LogickStudio/demaincloset/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `
  id, email, name, COALESCE(address,'') AS address, password_hash, role,
  referral_code, COALESCE(referred_by_code,'') AS referred_by_code,
  COALESCE(referred_users_json,'[]') AS referred_users_json, created_at`

// ByEmail resolves an email (case-insensitive) to its account, or
// (nil, nil) when no account holds it.
func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ByID returns (nil, nil) when the account no longer exists.
func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ByReferralCode resolves a referral code (case-insensitive) to its
// owner, or (nil, nil) when nobody holds that code.
func (r *UserRepo) ByReferralCode(code string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE UPPER(referral_code)=UPPER(?)`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(u *domain.User) error {
	_, err := r.DB.Exec(`
	  INSERT INTO users(id,email,name,address,password_hash,role,referral_code,referred_by_code)
	  VALUES(?,?,?,?,?,?,?,?)
	`, u.ID, u.Email, u.Name, u.Address, u.Hash, u.Role, u.ReferralCode, u.ReferredByCode)
	return err
}

func (r *UserRepo) UpdateProfile(id, name, address string) error {
	_, err := r.DB.Exec(`UPDATE users SET name=?, address=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, name, address, id)
	return err
}

// AppendReferredUser adds newUserID to the referrer's referred_users
// list.
func (r *UserRepo) AppendReferredUser(referrerID, newUserID string) error {
	var listJSON string
	if err := r.DB.Get(&listJSON, `SELECT COALESCE(referred_users_json,'[]') FROM users WHERE id=?`, referrerID); err != nil {
		return err
	}
	var ids []string
	if err := json.Unmarshal([]byte(listJSON), &ids); err != nil {
		ids = nil
	}
	ids = append(ids, newUserID)
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(`UPDATE users SET referred_users_json=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, string(b), referrerID)
	return err
}

func (r *UserRepo) ListAll() ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `SELECT `+userCols+` FROM users ORDER BY datetime(created_at) DESC`)
	return out, err
}

func (r *UserRepo) Count() (int, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// ReferredUsers decodes the stored referred_users list.
func ReferredUsers(u *domain.User) []string {
	var ids []string
	if err := json.Unmarshal([]byte(u.ReferredUsersJSON), &ids); err != nil {
		return nil
	}
	return ids
}
