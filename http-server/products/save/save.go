package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"smeta-backend/internal/constants"
	"smeta-backend/internal/storage"
)

type ProductSaver interface {
	UpsertProduct(ctx context.Context, p storage.Product) error
}

type Request struct {
	Name     string   `json:"name"`
	Unit     string   `json:"unit"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	PriceAZN *float64 `json:"price_azn"`
	Category string   `json:"category"`
	Source   string   `json:"source"`
	Note     string   `json:"note"`
}

// CreateProduct добавляет товар в каталог: POST /api/admin/products.
func CreateProduct(log *slog.Logger, saver ProductSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saveProduct(w, r, log, saver, uuid.NewString(), http.StatusCreated)
	}
}

// UpdateProduct создаёт или заменяет товар с id из пути: PUT /api/admin/products/{id}.
func UpdateProduct(log *slog.Logger, saver ProductSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			http.Error(w, "Missing product id", http.StatusBadRequest)
			return
		}
		saveProduct(w, r, log, saver, id, http.StatusOK)
	}
}

func saveProduct(w http.ResponseWriter, r *http.Request, log *slog.Logger, saver ProductSaver, id string, status int) {
	const op = "handlers.products.SaveProduct"

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return
	}

	product, err := req.toProduct(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := saver.UpsertProduct(ctx, product); err != nil {
		log.Error("Failed to save product", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	render.Status(r, status)
	render.JSON(w, r, product)
}

func (req Request) toProduct(id string) (storage.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return storage.Product{}, fmt.Errorf("не указано название товара")
	}
	if req.Price < 0 {
		return storage.Product{}, fmt.Errorf("цена не может быть отрицательной")
	}
	if req.PriceAZN != nil && *req.PriceAZN < 0 {
		return storage.Product{}, fmt.Errorf("цена в AZN не может быть отрицательной")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = constants.BaseCurrency
	}
	if !constants.SupportedCurrencies[currency] {
		return storage.Product{}, fmt.Errorf("неподдерживаемая валюта %q", currency)
	}

	return storage.Product{
		ID:       id,
		Name:     name,
		Unit:     strings.TrimSpace(req.Unit),
		Price:    req.Price,
		Currency: currency,
		PriceAZN: req.PriceAZN,
		Category: strings.TrimSpace(req.Category),
		Source:   strings.TrimSpace(req.Source),
		Note:     req.Note,
	}, nil
}
