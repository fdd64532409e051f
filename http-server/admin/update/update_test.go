package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCurrencyRatesUpdater struct {
	mock.Mock
}

func (m *MockCurrencyRatesUpdater) UpdateCurrencyRates(ctx context.Context, rates map[string]float64) error {
	args := m.Called(ctx, rates)
	return args.Error(0)
}

func TestUpdateCurrencyRates_Success(t *testing.T) {
	mockUpdater := new(MockCurrencyRatesUpdater)
	mockUpdater.On("UpdateCurrencyRates", mock.Anything, map[string]float64{"USD": 1.7, "EUR": 1.85}).Return(nil)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/currency",
		strings.NewReader(`{"rates": {"usd": 1.7, " EUR ": 1.85}}`))
	rr := httptest.NewRecorder()

	UpdateCurrencyRates(slog.Default(), mockUpdater).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	mockUpdater.AssertExpectations(t)
}

func TestUpdateCurrencyRates_BadRequest(t *testing.T) {
	bodies := map[string]string{
		"invalid json":  `{"rates": `,
		"empty":         `{"rates": {}}`,
		"unknown code":  `{"rates": {"GBP": 2}}`,
		"base currency": `{"rates": {"AZN": 2}}`,
		"negative":      `{"rates": {"USD": -1}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			mockUpdater := new(MockCurrencyRatesUpdater)

			req := httptest.NewRequest(http.MethodPut, "/api/admin/currency", strings.NewReader(body))
			rr := httptest.NewRecorder()

			UpdateCurrencyRates(slog.Default(), mockUpdater).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			mockUpdater.AssertNotCalled(t, "UpdateCurrencyRates", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateCurrencyRates_DBError(t *testing.T) {
	mockUpdater := new(MockCurrencyRatesUpdater)
	mockUpdater.On("UpdateCurrencyRates", mock.Anything, mock.Anything).Return(errors.New("db down"))

	req := httptest.NewRequest(http.MethodPut, "/api/admin/currency", strings.NewReader(`{"rates": {"TRY": 0.05}}`))
	rr := httptest.NewRecorder()

	UpdateCurrencyRates(slog.Default(), mockUpdater).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
