package repos

import (
	"github.com/jmoiron/sqlx"

	"github.com/LogickStudio/demaincloset/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Insert(rev *domain.Review) error {
	_, err := r.db.Exec(`
	  INSERT INTO reviews(id, product_id, user_id, user_name, rating, comment, created_at)
	  VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, rev.ID, rev.ProductID, rev.UserID, rev.UserName, rev.Rating, rev.Comment)
	return err
}

func (r *ReviewRepo) ListByProduct(productID string) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.Select(&out, `
	  SELECT id, product_id, user_id, user_name, rating, COALESCE(comment,'') AS comment, created_at
	  FROM reviews WHERE product_id = ?
	  ORDER BY datetime(created_at) DESC
	`, productID)
	return out, err
}
