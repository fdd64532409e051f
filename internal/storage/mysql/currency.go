package mysql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smeta-backend/internal/storage"
)

func (s *Storage) GetCurrencyRates(ctx context.Context) ([]storage.CurrencyRate, error) {
	const op = "storage.mysql.GetCurrencyRates"

	rows, err := s.db.QueryContext(ctx, `SELECT code, rate, updated_at FROM currency_rates ORDER BY code ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	rates := []storage.CurrencyRate{}
	for rows.Next() {
		var r storage.CurrencyRate
		if err := rows.Scan(&r.Code, &r.Rate, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		rates = append(rates, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return rates, nil
}

// UpdateCurrencyRates сохраняет курсы вручную заданных валют.
func (s *Storage) UpdateCurrencyRates(ctx context.Context, rates map[string]float64) error {
	const op = "storage.mysql.UpdateCurrencyRates"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO currency_rates (code, rate, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			rate = VALUES(rate),
			updated_at = VALUES(updated_at)
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare statement: %w", op, err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for code, rate := range rates {
		if _, err := stmt.ExecContext(ctx, strings.ToUpper(code), rate, now); err != nil {
			return fmt.Errorf("%s: ошибка сохранения курса %s: %w", op, code, err)
		}
	}

	return tx.Commit()
}
