package templateload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"smeta-backend/internal/service/currency"
	"smeta-backend/internal/storage"
)

var ErrInvalidBinding = errors.New("неизвестный способ выбора товаров")

type Binding string

const (
	BindingSkip       Binding = "skip"
	BindingSearch     Binding = "search"
	BindingSelections Binding = "selections"
)

type Repository interface {
	GetTemplate(ctx context.Context, id string) (*storage.Template, error)
	GetEstimate(ctx context.Context, id int64) (*storage.Estimate, error)
	GetCurrencyRates(ctx context.Context) ([]storage.CurrencyRate, error)
	SaveEstimateItems(ctx context.Context, est *storage.Estimate, added []storage.LineItem, replace bool) error
}

type LoadRequest struct {
	EstimateID  int64
	TemplateID  string
	Mode        Mode
	Binding     Binding
	Selections  map[int]string
	SkipAllFrom *int
}

type LoadService struct {
	log         *slog.Logger
	repo        Repository
	catalog     Catalog
	searchLimit int
}

func NewLoadService(log *slog.Logger, repo Repository, catalog Catalog, searchLimit int) *LoadService {
	return &LoadService{log: log, repo: repo, catalog: catalog, searchLimit: searchLimit}
}

// LoadTemplate загружает шаблон в смету и сохраняет результат одной транзакцией.
func (s *LoadService) LoadTemplate(ctx context.Context, req LoadRequest) (*Result, error) {
	const op = "service.templateload.LoadTemplate"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("estimate_id", req.EstimateID),
		slog.String("template_id", req.TemplateID),
	)

	if req.Mode == "" {
		req.Mode = ModeAppend
	}
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidMode, req.Mode)
	}

	binder, err := s.binder(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		tpl   *storage.Template
		est   *storage.Estimate
		rates []storage.CurrencyRate
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tpl, err = s.repo.GetTemplate(gCtx, req.TemplateID)
		if err != nil {
			return fmt.Errorf("шаблон: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		est, err = s.repo.GetEstimate(gCtx, req.EstimateID)
		if err != nil {
			return fmt.Errorf("смета: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rates, err = s.repo.GetCurrencyRates(gCtx)
		if err != nil {
			// без курсов работаем на значениях по умолчанию
			log.Warn("failed to fetch currency rates", slog.String("error", err.Error()))
			rates = nil
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	engine := NewEngine(log)
	res, err := engine.Load(ctx, Session{
		Estimate: est,
		Catalog:  s.catalog,
		Currency: currency.FromRates(rates),
		Binder:   binder,
	}, tpl.Items, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SaveEstimateItems(ctx, est, res.Items, req.Mode == ModeReplace); err != nil {
		return nil, fmt.Errorf("%s: ошибка сохранения сметы: %w", op, err)
	}

	log.Info("template loaded",
		slog.Int("added", res.Added),
		slog.Int("warnings", len(res.Warnings)),
		slog.String("mode", string(req.Mode)),
	)

	return res, nil
}

func (s *LoadService) binder(req LoadRequest) (Binder, error) {
	switch req.Binding {
	case "", BindingSkip:
		return SkipBinder{}, nil
	case BindingSearch:
		return NewSearchBinder(s.catalog, s.searchLimit), nil
	case BindingSelections:
		return NewSelectionBinder(s.catalog, req.Selections, req.SkipAllFrom), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBinding, req.Binding)
	}
}
