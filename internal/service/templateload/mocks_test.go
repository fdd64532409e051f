package templateload

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smeta-backend/internal/storage"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetProduct(ctx context.Context, id string) (*storage.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Product), args.Error(1)
}

func (m *MockCatalog) SearchProducts(ctx context.Context, text string, limit int) ([]*storage.Product, error) {
	args := m.Called(ctx, text, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.Product), args.Error(1)
}

type MockBinder struct {
	mock.Mock
}

func (m *MockBinder) SelectProduct(ctx context.Context, req BindRequest) (Selection, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(Selection), args.Error(1)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetTemplate(ctx context.Context, id string) (*storage.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Template), args.Error(1)
}

func (m *MockRepository) GetEstimate(ctx context.Context, id int64) (*storage.Estimate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Estimate), args.Error(1)
}

func (m *MockRepository) GetCurrencyRates(ctx context.Context) ([]storage.CurrencyRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.CurrencyRate), args.Error(1)
}

func (m *MockRepository) SaveEstimateItems(ctx context.Context, est *storage.Estimate, added []storage.LineItem, replace bool) error {
	args := m.Called(ctx, est, added, replace)
	return args.Error(0)
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func atIndex(i int) interface{} {
	return mock.MatchedBy(func(req BindRequest) bool { return req.Index == i })
}
