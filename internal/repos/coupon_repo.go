package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/LogickStudio/demaincloset/internal/domain"
)

type CouponRepo struct{ db *sqlx.DB }

func NewCouponRepo(db *sqlx.DB) *CouponRepo { return &CouponRepo{db: db} }

type couponRow struct {
	ID           string          `db:"id"`
	Code         string          `db:"code"`
	DiscountType string          `db:"discount_type"`
	Value        decimal.Decimal `db:"value"`
	ExpiryDate   string          `db:"expiry_date"`
	MinPurchase  decimal.Decimal `db:"min_purchase"`
	IsActive     bool            `db:"is_active"`
	UsedByJSON   string          `db:"used_by_json"`
	OwnerID      string          `db:"owner_id"`
	CreatedAt    string          `db:"created_at"`
}

const couponCols = `
  id, code, discount_type, value, expiry_date, min_purchase, is_active,
  used_by_json, owner_id, COALESCE(created_at,'') AS created_at`

// parseDBTime accepts both RFC3339 and sqlite's datetime() format.
func parseDBTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (row couponRow) toDomain() *domain.Coupon {
	c := &domain.Coupon{
		ID:           row.ID,
		Code:         row.Code,
		DiscountType: row.DiscountType,
		Value:        row.Value,
		ExpiryDate:   parseDBTime(row.ExpiryDate),
		MinPurchase:  row.MinPurchase,
		IsActive:     row.IsActive,
		OwnerID:      row.OwnerID,
		CreatedAt:    row.CreatedAt,
	}
	if err := json.Unmarshal([]byte(row.UsedByJSON), &c.UsedBy); err != nil {
		c.UsedBy = nil
	}
	return c
}

// FindByCode resolves a code (compared upper-cased) to a coupon, or
// (nil, nil) when no such code exists.
func (r *CouponRepo) FindByCode(code string) (*domain.Coupon, error) {
	var row couponRow
	err := r.db.Get(&row, `SELECT `+couponCols+` FROM coupons WHERE code = UPPER(?)`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// MarkUsed appends userID to the coupon's used_by list.
func (r *CouponRepo) MarkUsed(code, userID string) error {
	var usedJSON string
	if err := r.db.Get(&usedJSON, `SELECT used_by_json FROM coupons WHERE code = UPPER(?)`, code); err != nil {
		return err
	}
	var used []string
	if err := json.Unmarshal([]byte(usedJSON), &used); err != nil {
		used = nil
	}
	used = append(used, userID)
	b, err := json.Marshal(used)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE coupons SET used_by_json = ? WHERE code = UPPER(?)`, string(b), code)
	return err
}

func (r *CouponRepo) Insert(c *domain.Coupon) error {
	return r.insert(r.db, c)
}

// InsertPair mints two coupons in one transaction; the referral reward
// pair either both exist or neither does.
func (r *CouponRepo) InsertPair(a, b *domain.Coupon) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := r.insert(tx, a); err != nil {
		return err
	}
	if err := r.insert(tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (r *CouponRepo) insert(e execer, c *domain.Coupon) error {
	used, err := json.Marshal(c.UsedBy)
	if err != nil {
		return err
	}
	if c.UsedBy == nil {
		used = []byte("[]")
	}
	_, err = e.Exec(`
	  INSERT INTO coupons(id,code,discount_type,value,expiry_date,min_purchase,is_active,used_by_json,owner_id,created_at)
	  VALUES(?,UPPER(?),?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, c.ID, c.Code, c.DiscountType, c.Value, c.ExpiryDate.UTC().Format(time.RFC3339),
		c.MinPurchase, c.IsActive, string(used), c.OwnerID)
	return err
}

func (r *CouponRepo) Update(c *domain.Coupon) error {
	res, err := r.db.Exec(`
	  UPDATE coupons SET code=UPPER(?), discount_type=?, value=?, expiry_date=?, min_purchase=?, is_active=?, owner_id=?
	  WHERE id=?
	`, c.Code, c.DiscountType, c.Value, c.ExpiryDate.UTC().Format(time.RFC3339),
		c.MinPurchase, c.IsActive, c.OwnerID, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CouponRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM coupons WHERE id=?`, id)
	return err
}

func (r *CouponRepo) ListAll() ([]*domain.Coupon, error) {
	var rows []couponRow
	if err := r.db.Select(&rows, `SELECT `+couponCols+` FROM coupons ORDER BY datetime(created_at) DESC`); err != nil {
		return nil, err
	}
	out := make([]*domain.Coupon, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ListByOwner returns coupons assigned to a user (referral rewards shown
// on the dashboard).
func (r *CouponRepo) ListByOwner(userID string) ([]*domain.Coupon, error) {
	var rows []couponRow
	if err := r.db.Select(&rows, `SELECT `+couponCols+` FROM coupons WHERE owner_id = ? ORDER BY datetime(created_at) DESC`, userID); err != nil {
		return nil, err
	}
	out := make([]*domain.Coupon, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
