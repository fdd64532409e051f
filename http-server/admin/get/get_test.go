package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smeta-backend/internal/storage"
)

type MockCurrencyRatesProvider struct {
	mock.Mock
}

func (m *MockCurrencyRatesProvider) GetCurrencyRates(ctx context.Context) ([]storage.CurrencyRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.CurrencyRate), args.Error(1)
}

func TestGetCurrencyRates_Success(t *testing.T) {
	mockProvider := new(MockCurrencyRatesProvider)
	ts := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	mockProvider.On("GetCurrencyRates", mock.Anything).Return([]storage.CurrencyRate{
		{Code: "USD", Rate: 1.7, UpdatedAt: ts},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/currency", nil)
	rr := httptest.NewRecorder()

	GetCurrencyRates(slog.Default(), mockProvider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp ResponseRates
	err := render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp)
	require.NoError(t, err)

	assert.Equal(t, "AZN", resp.Base)

	// 1. валюты отсортированы, AZN всегда 1
	require.Len(t, resp.Rates, 4)
	assert.Equal(t, []string{"AZN", "EUR", "TRY", "USD"}, []string{resp.Rates[0].Code, resp.Rates[1].Code, resp.Rates[2].Code, resp.Rates[3].Code})
	assert.Equal(t, 1.0, resp.Rates[0].Rate)

	// 2. сохранённый курс с датой обновления
	assert.Equal(t, 1.7, resp.Rates[3].Rate)
	require.NotNil(t, resp.Rates[3].UpdatedAt)
	assert.True(t, ts.Equal(*resp.Rates[3].UpdatedAt))

	// 3. курс по умолчанию без даты
	assert.Equal(t, 0.0, resp.Rates[1].Rate)
	assert.Nil(t, resp.Rates[1].UpdatedAt)

	mockProvider.AssertExpectations(t)
}

func TestGetCurrencyRates_DBError(t *testing.T) {
	mockProvider := new(MockCurrencyRatesProvider)
	mockProvider.On("GetCurrencyRates", mock.Anything).Return(nil, errors.New("db down"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/currency", nil)
	rr := httptest.NewRecorder()

	GetCurrencyRates(slog.Default(), mockProvider).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
