package repos

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/LogickStudio/demaincloset/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
  id, name, category, COALESCE(description,'') AS description, COALESCE(images_json,'') AS images_json,
  COALESCE(care_instructions,'') AS care_instructions, active,
  created_at, COALESCE(updated_at,'') AS updated_at`

// Get returns the product with its variants, or (nil, nil) when it does
// not exist. Callers rely on the nil contract for stale cart lines.
func (r *ProductRepo) Get(id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.Select(&p.Variants, `
	  SELECT product_id, size, price, stock
	  FROM product_variants WHERE product_id = ? ORDER BY size
	`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(category string, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}
	args = append(args, limit, offset)

	var out []domain.Product
	if err := r.db.Select(&out, `
	  SELECT `+productCols+` FROM products
	  WHERE `+where+`
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?
	`, args...); err != nil {
		return nil, err
	}
	return out, r.attachVariants(out)
}

func (r *ProductRepo) Search(q, category string, limit, offset int) ([]domain.Product, error) {
	where := `active = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}
	args = append(args, limit, offset)

	var out []domain.Product
	if err := r.db.Select(&out, `
	  SELECT `+productCols+` FROM products
	  WHERE `+where+`
	  ORDER BY created_at DESC
	  LIMIT ? OFFSET ?
	`, args...); err != nil {
		return nil, err
	}
	return out, r.attachVariants(out)
}

func (r *ProductRepo) attachVariants(products []domain.Product) error {
	for i := range products {
		if err := r.db.Select(&products[i].Variants, `
		  SELECT product_id, size, price, stock
		  FROM product_variants WHERE product_id = ? ORDER BY size
		`, products[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// Create inserts a product and its variants in one transaction.
func (r *ProductRepo) Create(p *domain.Product) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO products(id,name,category,description,images_json,care_instructions,active,created_at)
	  VALUES(?,?,?,?,?,?,1,CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Category, p.Description, p.ImagesJSON, p.CareInstructions); err != nil {
		return err
	}
	for _, v := range p.Variants {
		if _, err := tx.Exec(`
		  INSERT INTO product_variants(product_id,size,price,stock) VALUES(?,?,?,?)
		`, p.ID, v.Size, v.Price, v.Stock); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Update rewrites the product row and replaces its variant set.
func (r *ProductRepo) Update(p *domain.Product) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
	  UPDATE products SET name=?, category=?, description=?, images_json=?, care_instructions=?,
	    active=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, p.Name, p.Category, p.Description, p.ImagesJSON, p.CareInstructions, p.Active, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if _, err := tx.Exec(`DELETE FROM product_variants WHERE product_id=?`, p.ID); err != nil {
		return err
	}
	for _, v := range p.Variants {
		if _, err := tx.Exec(`
		  INSERT INTO product_variants(product_id,size,price,stock) VALUES(?,?,?,?)
		`, p.ID, v.Size, v.Price, v.Stock); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ProductRepo) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM products WHERE id=?`, id)
	return err
}

// DecrementStock atomically subtracts qty units from a variant if enough
// stock exists; the conditional update is the reservation step at order
// submission.
func (r *ProductRepo) DecrementStock(productID, size string, qty int) error {
	res, err := r.db.Exec(`
		UPDATE product_variants
		SET stock = stock - ?
		WHERE product_id = ? AND size = ? AND stock >= ?
	`, qty, productID, size, qty)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("insufficient stock for %s (%s)", productID, size)
	}
	return nil
}

// UpsertVariant sets price/stock for (productID, size), creating the row
// if needed (admin stock edits).
func (r *ProductRepo) UpsertVariant(v domain.Variant) error {
	_, err := r.db.Exec(`
		INSERT INTO product_variants(product_id, size, price, stock)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(product_id, size) DO UPDATE SET price = excluded.price, stock = excluded.stock
	`, v.ProductID, v.Size, v.Price, v.Stock)
	return err
}

func (r *ProductRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products WHERE active=1`)
	return n, err
}
