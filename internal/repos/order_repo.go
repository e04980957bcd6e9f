package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type OrderRow struct {
	ID              string          `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerPhone   string          `db:"customer_phone" json:"customer_phone"`
	CustomerAddress string          `db:"customer_address" json:"customer_address"`
	CouponCode      string          `db:"coupon_code" json:"coupon_code,omitempty"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount        decimal.Decimal `db:"discount" json:"discount"`
	Total           decimal.Decimal `db:"total" json:"total"`
	ItemCount       int             `db:"item_count" json:"item_count"`
	Status          string          `db:"status" json:"status"`
	CreatedAt       string          `db:"created_at" json:"created_at"`
}

type OrderItemRow struct {
	OrderID   string          `db:"order_id" json:"-"`
	LineID    string          `db:"line_id" json:"line_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Size      string          `db:"size" json:"size"`
	Qty       int             `db:"qty" json:"qty"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

// Create inserts the order header and its items in one transaction.
func (r *OrderRepo) Create(o OrderRow, items []OrderItemRow) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, user_id, customer_name, customer_phone, customer_address, coupon_code,
	     subtotal, discount, total, item_count, status, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,'SUBMITTED',CURRENT_TIMESTAMP)
	`, o.ID, o.UserID, o.CustomerName, o.CustomerPhone, o.CustomerAddress, o.CouponCode,
		o.Subtotal, o.Discount, o.Total, o.ItemCount); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, line_id, product_id, name, size, qty, price)
		  VALUES(?,?,?,?,?,?,?)
		`, o.ID, it.LineID, it.ProductID, it.Name, it.Size, it.Qty, it.Price); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.Get(&o, `SELECT * FROM orders WHERE id = ?`, orderID); err != nil {
		return OrderRow{}, nil, err
	}
	var items []OrderItemRow
	if err := r.db.Select(&items, `
	  SELECT order_id, line_id, product_id, name, size, qty, price
	  FROM order_items WHERE order_id = ? ORDER BY name
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}
	return o, items, nil
}

func (r *OrderRepo) ListLatest(limit int) ([]OrderRow, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []OrderRow
	err := r.db.Select(&out, `
	  SELECT * FROM orders ORDER BY datetime(created_at) DESC LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) ListByUser(userID string) ([]OrderRow, error) {
	var out []OrderRow
	err := r.db.Select(&out, `
	  SELECT * FROM orders WHERE user_id = ? ORDER BY datetime(created_at) DESC
	`, userID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	_, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *OrderRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders`)
	return n, err
}
