package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"smeta-backend/internal/constants"
	"smeta-backend/internal/storage"
)

const productColumns = `id, name, unit, price, currency, price_azn, category, source, note`

func (s *Storage) GetProduct(ctx context.Context, id string) (*storage.Product, error) {
	const op = "storage.mysql.GetProduct"

	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: товар id='%s': %w", op, id, storage.ErrProductNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	return product, nil
}

// SearchProducts ищет по полнотекстовому индексу; если индекса нет или он
// ничего не нашёл, ищет подстроку без учёта регистра.
func (s *Storage) SearchProducts(ctx context.Context, text string, limit int) ([]*storage.Product, error) {
	const op = "storage.mysql.SearchProducts"

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}

	products, err := s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE MATCH(name, source, note, category) AGAINST (? IN NATURAL LANGUAGE MODE)
		LIMIT ?`, text, limit)
	if err != nil && mysqlErrNumber(err) != errFulltextKeyMissing {
		return nil, fmt.Errorf("%s: полнотекстовый поиск: %w", op, err)
	}
	if len(products) > 0 {
		return products, nil
	}

	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	products, err = s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE LOWER(name) LIKE ? OR LOWER(source) LIKE ? OR LOWER(note) LIKE ? OR LOWER(category) LIKE ?
		ORDER BY name ASC
		LIMIT ?`, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: поиск по подстроке: %w", op, err)
	}

	return products, nil
}

// UpsertProduct создаёт товар или обновляет существующий с тем же id.
func (s *Storage) UpsertProduct(ctx context.Context, p storage.Product) error {
	const op = "storage.mysql.UpsertProduct"

	stmt := `
		INSERT INTO products (id, name, unit, price, currency, price_azn, category, source, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			unit = VALUES(unit),
			price = VALUES(price),
			currency = VALUES(currency),
			price_azn = VALUES(price_azn),
			category = VALUES(category),
			source = VALUES(source),
			note = VALUES(note)
	`

	_, err := s.db.ExecContext(ctx, stmt, p.ID, p.Name, p.Unit, p.Price, p.Currency, p.PriceAZN, p.Category, p.Source, p.Note)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения товара: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteProduct(ctx context.Context, id string) error {
	const op = "storage.mysql.DeleteProduct"

	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления товара: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: товар id='%s': %w", op, id, storage.ErrProductNotFound)
	}

	return nil
}

func (s *Storage) queryProducts(ctx context.Context, query string, args ...interface{}) ([]*storage.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*storage.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по строкам: %w", err)
	}

	return products, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*storage.Product, error) {
	var (
		p        storage.Product
		priceAZN sql.NullFloat64
		note     sql.NullString
	)

	err := row.Scan(&p.ID, &p.Name, &p.Unit, &p.Price, &p.Currency, &priceAZN, &p.Category, &p.Source, &note)
	if err != nil {
		return nil, err
	}

	if priceAZN.Valid {
		v := priceAZN.Float64
		p.PriceAZN = &v
	}
	p.Note = note.String

	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
