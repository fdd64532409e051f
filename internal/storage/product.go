package storage

import "errors"

var ErrProductNotFound = errors.New("товар не найден")

type Product struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	PriceAZN *float64 `json:"price_azn"`
	Category string   `json:"category"`
	Source   string   `json:"source"`
	Note     string   `json:"note"`
}
