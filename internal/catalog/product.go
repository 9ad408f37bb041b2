package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// priceScale matches the numeric(12,2) price column.
const priceScale = 2

type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string          `json:"name" gorm:"size:255;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// MarshalJSON writes price as a JSON number without touching the
// process-wide decimal settings.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price json.Number `json:"price"`
	}{plain(p), json.Number(p.Price.String())})
}

// normalized rounds price to the column scale so the returned record
// matches what the database stores.
func (p Product) normalized() Product {
	p.Price = p.Price.Round(priceScale)
	return p
}

// changes lists the mutable columns; id is never part of an update.
func (p Product) changes() map[string]any {
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"quantity":    p.Quantity,
	}
}

func SeedProducts() []Product {
	return []Product{
		{ID: 1, Name: "Phone", Description: "Budget Phones", Price: decimal.NewFromInt(9999), Quantity: 10},
		{ID: 2, Name: "Laptop", Description: "Budget Laptop", Price: decimal.NewFromInt(59999), Quantity: 5},
	}
}
