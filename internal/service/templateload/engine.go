package templateload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smeta-backend/internal/storage"
)

var (
	ErrEngineUsed   = errors.New("движок уже использован")
	ErrInvalidMode  = errors.New("неизвестный режим загрузки")
	ErrNoEstimate   = errors.New("не задана смета")
	ErrNoConversion = errors.New("не задан конвертер валют")
)

type Mode string

const (
	ModeReplace Mode = "replace"
	ModeAppend  Mode = "append"
)

func (m Mode) Valid() bool {
	return m == ModeReplace || m == ModeAppend
}

type State int

const (
	StateIdle State = iota
	StateResolvingAmounts
	StateResolvingPrices
	StateMaterializingItems
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateResolvingAmounts:
		return "ResolvingAmounts"
	case StateResolvingPrices:
		return "ResolvingPrices"
	case StateMaterializingItems:
		return "MaterializingItems"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session - всё, с чем работает одна загрузка шаблона.
type Session struct {
	Estimate *storage.Estimate
	Catalog  Catalog
	Currency Converter
	Binder   Binder
}

type Result struct {
	Added    int                `json:"added"`
	Items    []storage.LineItem `json:"items"`
	Warnings []Warning          `json:"warnings"`
}

// Engine выполняет одну загрузку шаблона в смету.
// Состояния идут только вперёд: Idle -> ResolvingAmounts -> ResolvingPrices ->
// MaterializingItems -> Done.
type Engine struct {
	log   *slog.Logger
	state State
}

func NewEngine(log *slog.Logger) *Engine {
	return &Engine{log: log, state: StateIdle}
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) transition(to State) {
	e.log.Debug("template load state", slog.String("from", e.state.String()), slog.String("to", to.String()))
	e.state = to
}

// Load вычисляет позиции шаблона и добавляет их в смету сессии.
// Ошибки отдельных позиций собираются в Result.Warnings и не прерывают загрузку.
func (e *Engine) Load(ctx context.Context, sess Session, items []storage.TemplateItem, mode Mode) (*Result, error) {
	const op = "templateload.Engine.Load"

	if e.state != StateIdle {
		return nil, fmt.Errorf("%s: %w", op, ErrEngineUsed)
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidMode, mode)
	}
	if sess.Estimate == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoEstimate)
	}
	if sess.Currency == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNoConversion)
	}
	if sess.Binder == nil {
		sess.Binder = SkipBinder{}
	}

	e.transition(StateResolvingAmounts)
	amounts := ResolveAmounts(items, NewEnv(sess.Estimate.StringCount))

	e.transition(StateResolvingPrices)
	prices := ResolvePrices(items, amounts.Env)

	e.transition(StateMaterializingItems)
	res := &Result{
		Items:    make([]storage.LineItem, 0, len(items)),
		Warnings: append(amounts.Warnings, prices.Warnings...),
	}

	if mode == ModeReplace {
		sess.Estimate.Clear()
	}

	skipAll := false
	for i, item := range items {
		amount := amounts.Amounts[i]
		override := prices.Overrides[i]

		var line storage.LineItem
		if !item.IsGeneric() {
			line = e.materializeLinked(ctx, sess, i, item, amount, override, &res.Warnings)
		} else {
			var product *storage.Product
			if !skipAll {
				product, skipAll = e.bind(ctx, sess.Binder, i, item, &res.Warnings)
			}
			if product != nil {
				line = MaterializeBound(item, product, amount, override, sess.Currency)
			} else {
				line = MaterializeGeneric(item, amount, override, sess.Currency)
			}
		}

		res.Items = append(res.Items, sess.Estimate.Append(line))
	}
	res.Added = len(res.Items)

	e.transition(StateDone)

	return res, nil
}

func (e *Engine) materializeLinked(ctx context.Context, sess Session, i int, item storage.TemplateItem, amount float64, override *float64, warnings *[]Warning) storage.LineItem {
	var (
		product *storage.Product
		err     error
	)
	if sess.Catalog == nil {
		err = errors.New("каталог не подключён")
	} else {
		product, err = sess.Catalog.GetProduct(ctx, *item.ProductID)
		if err == nil && product == nil {
			err = storage.ErrProductNotFound
		}
	}

	if err != nil {
		e.log.Warn("product unavailable, using template defaults",
			slog.Int("index", i),
			slog.String("product_id", *item.ProductID),
			slog.String("error", err.Error()),
		)
		*warnings = append(*warnings, newWarning(KindProductUnavailable, i, item.Label(i), nil, err))
		return MaterializeGeneric(item, amount, override, sess.Currency)
	}

	return MaterializeLinked(item, product, amount, override, sess.Currency)
}

// bind возвращает выбранный товар (или nil) и признак SkipAll.
func (e *Engine) bind(ctx context.Context, binder Binder, i int, item storage.TemplateItem, warnings *[]Warning) (*storage.Product, bool) {
	sel, err := binder.SelectProduct(ctx, BindRequest{
		Index:        i,
		Query:        item.GenericName,
		CategoryHint: item.Category,
	})
	if err != nil {
		e.log.Warn("product binding failed", slog.Int("index", i), slog.String("error", err.Error()))
		*warnings = append(*warnings, newWarning(KindBindingFailed, i, item.Label(i), nil, err))
		return nil, false
	}

	switch sel.Outcome {
	case OutcomeSkipAll:
		return nil, true
	case OutcomeBound:
		if sel.Product == nil {
			*warnings = append(*warnings, newWarning(KindBindingFailed, i, item.Label(i), nil, storage.ErrProductNotFound))
			return nil, false
		}
		return sel.Product, false
	default:
		return nil, false
	}
}
