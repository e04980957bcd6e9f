package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

// Variant is one purchasable size/price/stock combination under a product.
// Size is the variant's identity within its product.
type Variant struct {
	ProductID string          `db:"product_id" json:"-"`
	Size      string          `db:"size" json:"size"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     int             `db:"stock" json:"stock"`
}

type Product struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Category         string    `db:"category" json:"category"`
	Description      string    `db:"description" json:"description"`
	ImagesJSON       string    `db:"images_json" json:"-"`
	CareInstructions string    `db:"care_instructions" json:"care_instructions,omitempty"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        string    `db:"created_at" json:"created_at"`
	UpdatedAt        string    `db:"updated_at" json:"updated_at,omitempty"`
	Variants         []Variant `db:"-" json:"variants"`
}

// VariantBySize returns the variant identified by size, or nil if the
// product does not carry that size.
func (p *Product) VariantBySize(size string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Size == size {
			return &p.Variants[i]
		}
	}
	return nil
}

// Images decodes the stored JSON image list; a corrupt or empty column
// yields no images rather than an error.
func (p *Product) Images() []string {
	if p.ImagesJSON == "" {
		return nil
	}
	var imgs []string
	if err := json.Unmarshal([]byte(p.ImagesJSON), &imgs); err != nil {
		return nil
	}
	return imgs
}

func (p *Product) FirstImage() string {
	imgs := p.Images()
	if len(imgs) == 0 {
		return ""
	}
	return imgs[0]
}

type Review struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"product_id"`
	UserID    string `db:"user_id" json:"user_id"`
	UserName  string `db:"user_name" json:"user_name"`
	Rating    int    `db:"rating" json:"rating"` // 1-5
	Comment   string `db:"comment" json:"comment,omitempty"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

type Message struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Email     string `db:"email" json:"email"`
	Subject   string `db:"subject" json:"subject"`
	Body      string `db:"body" json:"message"`
	IsRead    bool   `db:"is_read" json:"is_read"`
	CreatedAt string `db:"created_at" json:"created_at"`
}
