package templates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"smeta-backend/internal/constants"
	"smeta-backend/internal/storage"
)

type Repository interface {
	// UpsertTemplate сохраняет шаблон по названию и возвращает id записи
	// (существующий, если шаблон с таким названием уже был).
	UpsertTemplate(ctx context.Context, tpl *storage.Template) (string, error)
	GetTemplate(ctx context.Context, id string) (*storage.Template, error)
	ListTemplates(ctx context.Context) ([]storage.TemplateSummary, error)
	DeleteTemplate(ctx context.Context, id string) error
}

type Service struct {
	log  *slog.Logger
	repo Repository
}

func NewService(log *slog.Logger, repo Repository) *Service {
	return &Service{log: log, repo: repo}
}

// Save проверяет и сохраняет шаблон. При ошибке проверки в хранилище ничего не пишется.
func (s *Service) Save(ctx context.Context, name string, items []storage.TemplateItem) (*storage.Template, error) {
	const op = "service.templates.Save"

	if err := Validate(name, items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tpl := &storage.Template{
		ID:    uuid.NewString(),
		Name:  strings.TrimSpace(name),
		Items: normalize(items),
	}

	id, err := s.repo.UpsertTemplate(ctx, tpl)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка сохранения шаблона %q: %w", op, tpl.Name, err)
	}
	tpl.ID = id

	s.log.Info("template saved",
		slog.String("op", op),
		slog.String("id", id),
		slog.String("name", tpl.Name),
		slog.Int("items", len(tpl.Items)),
	)

	return tpl, nil
}

func (s *Service) Get(ctx context.Context, id string) (*storage.Template, error) {
	const op = "service.templates.Get"

	tpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tpl, nil
}

func (s *Service) List(ctx context.Context) ([]storage.TemplateSummary, error) {
	const op = "service.templates.List"

	list, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "service.templates.Delete"

	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("template deleted", slog.String("op", op), slog.String("id", id))
	return nil
}

func normalize(items []storage.TemplateItem) []storage.TemplateItem {
	out := make([]storage.TemplateItem, len(items))
	for i, item := range items {
		item.GenericName = strings.TrimSpace(item.GenericName)
		item.VarName = strings.TrimSpace(item.VarName)
		item.AmountExpr = strings.TrimSpace(item.AmountExpr)
		item.PriceExpr = strings.TrimSpace(item.PriceExpr)
		if item.AmountExpr == "" {
			item.AmountExpr = constants.DefaultAmountExpr
		}
		item.Currency = strings.ToUpper(strings.TrimSpace(item.Currency))
		if item.Currency == "" {
			item.Currency = constants.BaseCurrency
		}
		if item.IsGeneric() {
			item.ProductID = nil
		}
		out[i] = item
	}
	return out
}
