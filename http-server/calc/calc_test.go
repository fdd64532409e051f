package calc

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doCalc(t *testing.T, body string) (int, Response) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/calc", strings.NewReader(body))
	rr := httptest.NewRecorder()

	Calc(slog.Default()).ServeHTTP(rr, req)

	var resp Response
	if rr.Code == http.StatusOK {
		require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &resp))
	}
	return rr.Code, resp
}

func TestCalc(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		value float64
		ok    bool
	}{
		{"plain number", `{"text": "12.5"}`, 12.5, true},
		{"comma decimal", `{"text": "12,5"}`, 12.5, true},
		{"formula", `{"text": "=2*string+1", "variables": {"string": 4}}`, 9, true},
		{"unknown variable", `{"text": "=x*2"}`, 0, false},
		{"division by zero", `{"text": "=1/0"}`, 0, false},
		{"empty formula", `{"text": "="}`, 0, false},
		{"garbage", `{"text": "abc"}`, 0, false},
		{"nan", `{"text": "nan"}`, 0, false},
		{"inf", `{"text": "-inf"}`, 0, false},
		{"hex float", `{"text": "0x1p3"}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := doCalc(t, tt.body)

			assert.Equal(t, http.StatusOK, code)
			assert.Equal(t, tt.ok, resp.OK)
			assert.InDelta(t, tt.value, resp.Value, 1e-9)
		})
	}
}

func TestCalc_InvalidJSON(t *testing.T) {
	code, _ := doCalc(t, `{"text": `)
	assert.Equal(t, http.StatusBadRequest, code)
}
