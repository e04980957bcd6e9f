package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Blob keys for the two independently persisted pieces of cart state.
const (
	CartKeyLines  = "lines"
	CartKeyCoupon = "coupon"
)

// CartStateRepo is the durable key-value store behind the pricing
// engine: one JSON blob per (user, key).
type CartStateRepo struct{ db *sqlx.DB }

func NewCartStateRepo(db *sqlx.DB) *CartStateRepo { return &CartStateRepo{db: db} }

// Get returns the stored blob, or nil when absent.
func (r *CartStateRepo) Get(userID, key string) ([]byte, error) {
	var blob string
	err := r.db.Get(&blob, `SELECT blob FROM cart_state WHERE user_id=? AND key=?`, userID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(blob), nil
}

func (r *CartStateRepo) Put(userID, key string, blob []byte) error {
	_, err := r.db.Exec(`
	  INSERT INTO cart_state(user_id, key, blob, updated_at)
	  VALUES(?,?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(user_id, key) DO UPDATE SET blob = excluded.blob, updated_at = CURRENT_TIMESTAMP
	`, userID, key, string(blob))
	return err
}

func (r *CartStateRepo) Delete(userID, key string) error {
	_, err := r.db.Exec(`DELETE FROM cart_state WHERE user_id=? AND key=?`, userID, key)
	return err
}

// Clear drops all persisted cart state for a user; called when the
// identity session ends.
func (r *CartStateRepo) Clear(userID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_state WHERE user_id=?`, userID)
	return err
}
