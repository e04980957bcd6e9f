package domain

type User struct {
	ID                string `db:"id" json:"id"`
	Email             string `db:"email" json:"email"`
	Name              string `db:"name" json:"name"`
	Address           string `db:"address" json:"address,omitempty"`
	Hash              string `db:"password_hash" json:"-"`
	Role              string `db:"role" json:"role"` // USER | ADMIN
	ReferralCode      string `db:"referral_code" json:"referral_code"`
	ReferredByCode    string `db:"referred_by_code" json:"referred_by_code,omitempty"`
	ReferredUsersJSON string `db:"referred_users_json" json:"-"`
	CreatedAt         string `db:"created_at" json:"created_at"`
}

func (u *User) IsAdmin() bool { return u.Role == "ADMIN" }
