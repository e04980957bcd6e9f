package repos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/LogickStudio/demaincloset/internal/domain"
)

type MessageRepo struct{ db *sqlx.DB }

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{db: db} }

func (r *MessageRepo) Insert(m *domain.Message) error {
	_, err := r.db.Exec(`
	  INSERT INTO messages(id, name, email, subject, body, is_read, created_at)
	  VALUES(?,?,?,?,?,0,CURRENT_TIMESTAMP)
	`, m.ID, m.Name, m.Email, m.Subject, m.Body)
	return err
}

func (r *MessageRepo) ListLatest(limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Message
	err := r.db.Select(&out, `
	  SELECT id, name, email, subject, body, is_read, created_at
	  FROM messages ORDER BY datetime(created_at) DESC LIMIT ?
	`, limit)
	return out, err
}

func (r *MessageRepo) MarkRead(id string) error {
	res, err := r.db.Exec(`UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *MessageRepo) CountUnread() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM messages WHERE is_read = 0`)
	return n, err
}
