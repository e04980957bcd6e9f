package repos

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/LogickStudio/demaincloset/internal/auth"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (categories/products/variants)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users and a welcome coupon exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedCoupons(db); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates all tables; tests reuse it against :memory:.
func EnsureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  description TEXT,
  images_json TEXT,
  care_instructions TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_name       ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Size/price/stock variants nested under a product
CREATE TABLE IF NOT EXISTS product_variants(
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  size  TEXT NOT NULL,
  price NUMERIC NOT NULL CHECK (price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  PRIMARY KEY(product_id, size)
);

-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  referral_code TEXT NOT NULL UNIQUE,
  referred_by_code TEXT NOT NULL DEFAULT '',
  referred_users_json TEXT NOT NULL DEFAULT '[]',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_refcode ON users(UPPER(referral_code));

-- Coupons
CREATE TABLE IF NOT EXISTS coupons(
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,            -- stored upper-cased
  discount_type TEXT NOT NULL CHECK (discount_type IN ('fixed','percentage')),
  value NUMERIC NOT NULL CHECK (value >= 0),
  expiry_date TEXT NOT NULL,
  min_purchase NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  used_by_json TEXT NOT NULL DEFAULT '[]',
  owner_id TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Persisted cart state: two independent keyed JSON blobs per user
-- ('lines' and 'coupon'). A cache of the engine state, not the truth.
CREATE TABLE IF NOT EXISTS cart_state(
  user_id TEXT NOT NULL,
  key TEXT NOT NULL CHECK (key IN ('lines','coupon')),
  blob TEXT NOT NULL,
  updated_at TEXT,
  PRIMARY KEY(user_id, key)
);

-- Orders (back-office record of WhatsApp submissions)
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_phone TEXT NOT NULL,
  customer_address TEXT NOT NULL,
  coupon_code TEXT NOT NULL DEFAULT '',
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  item_count INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'SUBMITTED',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_user       ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  line_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  size TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, line_id)
);

-- Reviews
CREATE TABLE IF NOT EXISTS reviews(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL,
  user_name TEXT NOT NULL,
  rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
  comment TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id);

-- Contact messages
CREATE TABLE IF NOT EXISTS messages(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  subject TEXT NOT NULL,
  body TEXT NOT NULL,
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/products/variants")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('cat-clothes','Clothes'),
	  ('cat-bags','Bags'),
	  ('cat-shoes','Shoes'),
	  ('cat-jewelry','Jewelry')`)

	tx.MustExec(`INSERT INTO products(id,name,category,description,images_json,care_instructions) VALUES
	  ('prd-jalabia','Classic Jalabia','Clothes','Flowing premium Jalabia, perfect for every occasion.','["products/prd-jalabia/main.jpg"]','Hand wash cold; hang dry'),
	  ('prd-tote','Luxe Leather Tote','Bags','Designer-inspired tote in full-grain leather.','["products/prd-tote/main.jpg"]',''),
	  ('prd-mule','Satin Mules','Shoes','Elegant satin mules with a kitten heel.','["products/prd-mule/main.jpg"]','')`)

	tx.MustExec(`INSERT INTO product_variants(product_id,size,price,stock) VALUES
	  ('prd-jalabia','M',12500,8),
	  ('prd-jalabia','L',12500,5),
	  ('prd-jalabia','XL',13500,2),
	  ('prd-tote','One Size',28000,4),
	  ('prd-mule','38',15500,3),
	  ('prd-mule','40',15500,0)`)

	return tx.Commit()
}

// seedUsers ensures a demo USER and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash, RefCode string
	}
	mk := func(id, email, name, role, raw, refCode string) u {
		h, _ := auth.HashPassword(raw)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: h, RefCode: refCode}
	}

	users := []u{
		mk("u-amara", "amara@demaincloset.test", "Amara", "USER", "Passw0rd!", "DEMAIN-AMARA1"),
		mk("u-tunde", "tunde@demaincloset.test", "Tunde", "USER", "Passw0rd!", "DEMAIN-TUNDE1"),
		mk("u-admin", "admin@demaincloset.test", "Admin", "ADMIN", "Passw0rd!", "DEMAIN-ADMIN1"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role,referral_code)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role, x.RefCode); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedCoupons ensures one public launch coupon exists (idempotent).
func seedCoupons(db *sqlx.DB) error {
	_, err := db.Exec(`
		INSERT INTO coupons(id,code,discount_type,value,expiry_date,min_purchase,is_active)
		SELECT ?, 'LAUNCH10', 'percentage', 10, datetime('now','+90 days'), 5000, 1
		WHERE NOT EXISTS (SELECT 1 FROM coupons WHERE code='LAUNCH10')
	`, uuid.NewString())
	return err
}
