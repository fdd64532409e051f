package mysql

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeta-backend/internal/storage"
)

var testStorage *Storage

func TestMain(m *testing.M) {
	// Без SMETA_TEST_DSN интеграционные тесты пропускаются
	dsn := os.Getenv("SMETA_TEST_DSN")
	if dsn != "" {
		var err error
		testStorage, err = New(dsn)
		if err != nil {
			panic(fmt.Errorf("не удалось подключиться к тестовой БД: %w", err))
		}

		if err := testStorage.Ping(context.Background()); err != nil {
			panic(fmt.Errorf("ping failed: %w", err))
		}
		if err := testStorage.Migrate(context.Background()); err != nil {
			panic(fmt.Errorf("migrate failed: %w", err))
		}
	}

	code := m.Run()

	if testStorage != nil {
		testStorage.Close()
	}
	os.Exit(code)
}

func requireDB(t *testing.T) *Storage {
	t.Helper()
	if testStorage == nil {
		t.Skip("SMETA_TEST_DSN не задан")
	}
	return testStorage
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New("not a dsn")
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `10\%\_a\\b`, escapeLike(`10%_a\b`))
}

func TestProducts(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	tag := uuid.NewString()[:8]
	priceAZN := 2.55
	cable := storage.Product{ID: "cab-" + tag, Name: "Кабель ВВГ " + tag, Unit: "m", Price: 1.5, Currency: "USD", PriceAZN: &priceAZN, Category: "Кабели"}
	lamp := storage.Product{ID: "lmp-" + tag, Name: "Лампа", Unit: "ədəd", Price: 4, Currency: "AZN", Note: "склад " + tag}

	require.NoError(t, s.UpsertProduct(ctx, cable))
	require.NoError(t, s.UpsertProduct(ctx, lamp))
	t.Cleanup(func() {
		s.db.Exec(`DELETE FROM products WHERE id IN (?, ?)`, cable.ID, lamp.ID)
	})

	// 1. получение по id
	got, err := s.GetProduct(ctx, cable.ID)
	require.NoError(t, err)
	assert.Equal(t, cable.Name, got.Name)
	require.NotNil(t, got.PriceAZN)
	assert.Equal(t, 2.55, *got.PriceAZN)

	_, err = s.GetProduct(ctx, "missing-"+tag)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)

	// 2. поиск находит товар по примечанию
	found, err := s.SearchProducts(ctx, tag, 10)
	require.NoError(t, err)
	ids := make([]string, 0, len(found))
	for _, p := range found {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, cable.ID)
	assert.Contains(t, ids, lamp.ID)

	// 3. удаление
	require.NoError(t, s.DeleteProduct(ctx, lamp.ID))
	_, err = s.GetProduct(ctx, lamp.ID)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, lamp.ID), storage.ErrProductNotFound)
}

func TestTemplates(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	name := "Шаблон " + uuid.NewString()
	tpl := &storage.Template{
		ID:    uuid.NewString(),
		Name:  name,
		Items: []storage.TemplateItem{{GenericName: "Кабель", VarName: "m", AmountExpr: "string*2", Currency: "AZN"}},
	}

	id, err := s.UpsertTemplate(ctx, tpl)
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, id)

	// сохранение с тем же названием обновляет существующий шаблон
	again := &storage.Template{ID: uuid.NewString(), Name: name, Items: append(tpl.Items, storage.TemplateItem{GenericName: "Хомут", AmountExpr: "m/10", Currency: "AZN"})}
	id2, err := s.UpsertTemplate(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	got, err := s.GetTemplate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "m/10", got.Items[1].AmountExpr)

	list, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	var summary *storage.TemplateSummary
	for i := range list {
		if list[i].ID == id {
			summary = &list[i]
		}
	}
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.ItemCount)

	require.NoError(t, s.DeleteTemplate(ctx, id))
	assert.ErrorIs(t, s.DeleteTemplate(ctx, id), storage.ErrTemplateNotFound)

	_, err = s.GetTemplate(ctx, id)
	assert.ErrorIs(t, err, storage.ErrTemplateNotFound)
}

func TestEstimateItems(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	id, err := s.CreateEstimate(ctx, "Тестовая смета", 5)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.db.Exec(`DELETE FROM estimates WHERE id = ?`, id)
	})

	est, err := s.GetEstimate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 5, est.StringCount)
	assert.Equal(t, 1, est.NextID)

	// 1. добавление
	pid := "p-1"
	added := []storage.LineItem{
		est.Append(storage.LineItem{Name: "A", Quantity: 2, Currency: "AZN", Total: 3}),
		est.Append(storage.LineItem{Name: "B", Quantity: 1, Currency: "USD", ProductID: &pid}),
	}
	require.NoError(t, s.SaveEstimateItems(ctx, est, added, false))

	est, err = s.GetEstimate(ctx, id)
	require.NoError(t, err)
	require.Len(t, est.Items, 2)
	assert.Equal(t, 3, est.NextID)
	require.NotNil(t, est.Items[1].ProductID)
	assert.Equal(t, "p-1", *est.Items[1].ProductID)

	// 2. замена
	est.Clear()
	added = []storage.LineItem{est.Append(storage.LineItem{Name: "C", Quantity: 1, Currency: "AZN"})}
	require.NoError(t, s.SaveEstimateItems(ctx, est, added, true))

	est, err = s.GetEstimate(ctx, id)
	require.NoError(t, err)
	require.Len(t, est.Items, 1)
	assert.Equal(t, "C", est.Items[0].Name)
	assert.Equal(t, 1, est.Items[0].ID)
	assert.Equal(t, 2, est.NextID)

	_, err = s.GetEstimate(ctx, -1)
	assert.ErrorIs(t, err, storage.ErrEstimateNotFound)
}

func TestCurrencyRates(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	require.NoError(t, s.UpdateCurrencyRates(ctx, map[string]float64{"usd": 1.7, "EUR": 1.85}))

	rates, err := s.GetCurrencyRates(ctx)
	require.NoError(t, err)

	byCode := map[string]float64{}
	for _, r := range rates {
		byCode[r.Code] = r.Rate
	}
	assert.Equal(t, 1.7, byCode["USD"])
	assert.Equal(t, 1.85, byCode["EUR"])
}

func TestRenumber(t *testing.T) {
	// смета прочитана с next_id = 3, а в базе уже 5
	est := &storage.Estimate{NextID: 3, Items: []storage.LineItem{{ID: 1}, {ID: 2}}}
	added := []storage.LineItem{est.Append(storage.LineItem{Name: "A"}), est.Append(storage.LineItem{Name: "B"})}

	renumber(est, added, 5)

	assert.Equal(t, 5, added[0].ID)
	assert.Equal(t, 6, added[1].ID)
	assert.Equal(t, []int{1, 2, 5, 6}, []int{est.Items[0].ID, est.Items[1].ID, est.Items[2].ID, est.Items[3].ID})
	assert.Equal(t, 7, est.NextID)
}

func TestSaveEstimateItems_ConcurrentAppend(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	id, err := s.CreateEstimate(ctx, "Параллельная загрузка", 1)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.db.Exec(`DELETE FROM estimates WHERE id = ?`, id)
	})

	// 1. обе загрузки читают смету до сохранения
	first, err := s.GetEstimate(ctx, id)
	require.NoError(t, err)
	second, err := s.GetEstimate(ctx, id)
	require.NoError(t, err)

	addedFirst := []storage.LineItem{first.Append(storage.LineItem{Name: "A", Quantity: 1, Currency: "AZN"})}
	addedSecond := []storage.LineItem{second.Append(storage.LineItem{Name: "B", Quantity: 1, Currency: "AZN"})}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = s.SaveEstimateItems(ctx, first, addedFirst, false)
	}()
	go func() {
		defer wg.Done()
		errs[1] = s.SaveEstimateItems(ctx, second, addedSecond, false)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// 2. позиции получили разные номера
	assert.NotEqual(t, addedFirst[0].ID, addedSecond[0].ID)

	est, err := s.GetEstimate(ctx, id)
	require.NoError(t, err)
	require.Len(t, est.Items, 2)
	assert.Equal(t, 1, est.Items[0].ID)
	assert.Equal(t, 2, est.Items[1].ID)
	assert.Equal(t, 3, est.NextID)
}

func TestUpdateEstimateItem(t *testing.T) {
	s := requireDB(t)
	ctx := context.Background()

	id, err := s.CreateEstimate(ctx, "Правка позиции", 1)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.db.Exec(`DELETE FROM estimates WHERE id = ?`, id)
	})

	est, err := s.GetEstimate(ctx, id)
	require.NoError(t, err)
	added := []storage.LineItem{est.Append(storage.LineItem{Name: "A", Quantity: 2, UnitPriceAZN: 5, Total: 10, Currency: "AZN"})}
	require.NoError(t, s.SaveEstimateItems(ctx, est, added, false))

	qty, margin := 4.0, 25.0
	item, err := s.UpdateEstimateItem(ctx, id, added[0].ID, storage.ItemEdit{Quantity: &qty, MarginPercent: &margin})
	require.NoError(t, err)
	assert.Equal(t, 20.0, item.Total)
	assert.Equal(t, 25.0, item.MarginPercent)

	est, err = s.GetEstimate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4.0, est.Items[0].Quantity)
	assert.Equal(t, "5", est.Summary().Margin.String())

	_, err = s.UpdateEstimateItem(ctx, id, 99, storage.ItemEdit{Quantity: &qty})
	assert.ErrorIs(t, err, storage.ErrEstimateItemNotFound)
}
