package templateload

import (
	"context"
	"fmt"
	"strings"

	"smeta-backend/internal/storage"
)

type Catalog interface {
	GetProduct(ctx context.Context, id string) (*storage.Product, error)
	SearchProducts(ctx context.Context, text string, limit int) ([]*storage.Product, error)
}

type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeBound
	OutcomeSkipAll
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBound:
		return "bound"
	case OutcomeSkipAll:
		return "skip_all"
	default:
		return "skipped"
	}
}

type Selection struct {
	Outcome Outcome
	Product *storage.Product
}

func Bound(p *storage.Product) Selection { return Selection{Outcome: OutcomeBound, Product: p} }
func Skipped() Selection                 { return Selection{Outcome: OutcomeSkipped} }
func SkipAll() Selection                 { return Selection{Outcome: OutcomeSkipAll} }

type BindRequest struct {
	Index        int
	Query        string
	CategoryHint string
}

// Binder выбирает товар каталога для обобщённой позиции шаблона.
// После SkipAll движок больше не обращается к нему в рамках загрузки.
type Binder interface {
	SelectProduct(ctx context.Context, req BindRequest) (Selection, error)
}

// SkipBinder оставляет все обобщённые позиции без товара.
type SkipBinder struct{}

func (SkipBinder) SelectProduct(context.Context, BindRequest) (Selection, error) {
	return SkipAll(), nil
}

// SelectionBinder применяет выбор, присланный клиентом: индекс позиции -> id товара.
type SelectionBinder struct {
	catalog     Catalog
	choices     map[int]string
	skipAllFrom int
}

// NewSelectionBinder: skipAllFrom == nil - пропуска всех оставшихся нет.
func NewSelectionBinder(catalog Catalog, choices map[int]string, skipAllFrom *int) *SelectionBinder {
	b := &SelectionBinder{catalog: catalog, choices: choices, skipAllFrom: -1}
	if skipAllFrom != nil && *skipAllFrom >= 0 {
		b.skipAllFrom = *skipAllFrom
	}
	return b
}

func (b *SelectionBinder) SelectProduct(ctx context.Context, req BindRequest) (Selection, error) {
	const op = "templateload.SelectionBinder.SelectProduct"

	if b.skipAllFrom >= 0 && req.Index >= b.skipAllFrom {
		return SkipAll(), nil
	}

	id := strings.TrimSpace(b.choices[req.Index])
	if id == "" {
		return Skipped(), nil
	}

	product, err := b.catalog.GetProduct(ctx, id)
	if err != nil {
		return Selection{}, fmt.Errorf("%s: товар %s: %w", op, id, err)
	}

	return Bound(product), nil
}

// SearchBinder подбирает товар поиском по каталогу: сначала совпадение
// по категории, иначе первый найденный.
type SearchBinder struct {
	catalog Catalog
	limit   int
}

func NewSearchBinder(catalog Catalog, limit int) *SearchBinder {
	return &SearchBinder{catalog: catalog, limit: limit}
}

func (b *SearchBinder) SelectProduct(ctx context.Context, req BindRequest) (Selection, error) {
	const op = "templateload.SearchBinder.SelectProduct"

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Skipped(), nil
	}

	products, err := b.catalog.SearchProducts(ctx, query, b.limit)
	if err != nil {
		return Selection{}, fmt.Errorf("%s: поиск %q: %w", op, query, err)
	}
	if len(products) == 0 {
		return Skipped(), nil
	}

	if hint := strings.TrimSpace(req.CategoryHint); hint != "" {
		for _, p := range products {
			if strings.EqualFold(strings.TrimSpace(p.Category), hint) {
				return Bound(p), nil
			}
		}
	}

	return Bound(products[0]), nil
}
