package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smeta-backend/internal/storage"
)

func (s *Storage) CreateEstimate(ctx context.Context, name string, stringCount int) (int64, error) {
	const op = "storage.mysql.CreateEstimate"

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO estimates (name, string_count, next_id) VALUES (?, ?, 1)`, name, stringCount)
	if err != nil {
		return 0, fmt.Errorf("%s: ошибка создания сметы: %w", op, err)
	}

	return res.LastInsertId()
}

func (s *Storage) GetEstimate(ctx context.Context, id int64) (*storage.Estimate, error) {
	const op = "storage.mysql.GetEstimate"

	est := &storage.Estimate{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, string_count, next_id FROM estimates WHERE id = ?`, id,
	).Scan(&est.ID, &est.Name, &est.StringCount, &est.NextID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: смета id=%d: %w", op, id, storage.ErrEstimateNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, name, quantity, unit, unit_price, currency, unit_price_azn, total,
		       margin_percent, category, source, note, is_custom, product_id, quantity_round, price_round
		FROM estimate_items
		WHERE estimate_id = ?
		ORDER BY item_id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения позиций сметы: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      storage.LineItem
			note      sql.NullString
			productID sql.NullString
		)

		err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &item.Unit, &item.UnitPrice, &item.Currency,
			&item.UnitPriceAZN, &item.Total, &item.MarginPercent, &item.Category, &item.Source, &note,
			&item.IsCustom, &productID, &item.QuantityRound, &item.PriceRound)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}

		item.Note = note.String
		if productID.Valid {
			pid := productID.String
			item.ProductID = &pid
		}
		est.Items = append(est.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return est, nil
}

// SaveEstimateItems записывает добавленные позиции и счётчик next_id одной
// транзакцией. При replace старые позиции сметы удаляются.
// Строка сметы блокируется (FOR UPDATE), номера позиций берутся из
// сохранённого next_id: параллельные загрузки в одну смету не пересекаются.
// Номера в added и est переписываются на фактически сохранённые.
func (s *Storage) SaveEstimateItems(ctx context.Context, est *storage.Estimate, added []storage.LineItem, replace bool) error {
	const op = "storage.mysql.SaveEstimateItems"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer tx.Rollback()

	var nextID int
	err = tx.QueryRowContext(ctx, `SELECT next_id FROM estimates WHERE id = ? FOR UPDATE`, est.ID).Scan(&nextID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: смета id=%d: %w", op, est.ID, storage.ErrEstimateNotFound)
		}
		return fmt.Errorf("%s: блокировка сметы: %w", op, err)
	}

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM estimate_items WHERE estimate_id = ?`, est.ID); err != nil {
			return fmt.Errorf("%s: ошибка очистки сметы: %w", op, err)
		}
		nextID = 1
	} else if nextID < 1 {
		// старые сметы без счётчика
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(item_id), 0) + 1 FROM estimate_items WHERE estimate_id = ?`, est.ID,
		).Scan(&nextID); err != nil {
			return fmt.Errorf("%s: ошибка расчёта next_id: %w", op, err)
		}
	}

	renumber(est, added, nextID)

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO estimate_items
			(estimate_id, item_id, name, quantity, unit, unit_price, currency, unit_price_azn, total,
			 margin_percent, category, source, note, is_custom, product_id, quantity_round, price_round)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%s: prepare statement: %w", op, err)
	}
	defer stmt.Close()

	for _, item := range added {
		_, err := stmt.ExecContext(ctx, est.ID, item.ID, item.Name, item.Quantity, item.Unit, item.UnitPrice,
			item.Currency, item.UnitPriceAZN, item.Total, item.MarginPercent, item.Category, item.Source,
			item.Note, item.IsCustom, item.ProductID, item.QuantityRound, item.PriceRound)
		if err != nil {
			if mysqlErrNumber(err) == errDuplicateEntry {
				return fmt.Errorf("%s: позиция %d уже есть в смете %d: %w", op, item.ID, est.ID, storage.ErrEstimateConflict)
			}
			return fmt.Errorf("%s: ошибка сохранения позиции сметы: %w", op, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE estimates SET next_id = ? WHERE id = ?`, est.NextID, est.ID); err != nil {
		return fmt.Errorf("%s: ошибка обновления next_id: %w", op, err)
	}

	return tx.Commit()
}

// renumber нумерует added с first и выставляет est.NextID.
// Хвост est.Items - те же позиции, что и added.
func renumber(est *storage.Estimate, added []storage.LineItem, first int) {
	offset := len(est.Items) - len(added)
	for k := range added {
		added[k].ID = first + k
		if offset >= 0 {
			est.Items[offset+k].ID = added[k].ID
		}
	}
	est.NextID = first + len(added)
}

// UpdateEstimateItem применяет правку количества или наценки к одной позиции.
func (s *Storage) UpdateEstimateItem(ctx context.Context, estimateID int64, itemID int, edit storage.ItemEdit) (*storage.LineItem, error) {
	const op = "storage.mysql.UpdateEstimateItem"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer tx.Rollback()

	var (
		item      storage.LineItem
		note      sql.NullString
		productID sql.NullString
	)
	err = tx.QueryRowContext(ctx, `
		SELECT item_id, name, quantity, unit, unit_price, currency, unit_price_azn, total,
		       margin_percent, category, source, note, is_custom, product_id, quantity_round, price_round
		FROM estimate_items
		WHERE estimate_id = ? AND item_id = ?
		FOR UPDATE
	`, estimateID, itemID).Scan(&item.ID, &item.Name, &item.Quantity, &item.Unit, &item.UnitPrice, &item.Currency,
		&item.UnitPriceAZN, &item.Total, &item.MarginPercent, &item.Category, &item.Source, &note,
		&item.IsCustom, &productID, &item.QuantityRound, &item.PriceRound)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: смета id=%d, позиция %d: %w", op, estimateID, itemID, storage.ErrEstimateItemNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	item.Note = note.String
	if productID.Valid {
		pid := productID.String
		item.ProductID = &pid
	}

	item.Apply(edit)

	_, err = tx.ExecContext(ctx, `
		UPDATE estimate_items SET quantity = ?, total = ?, margin_percent = ?
		WHERE estimate_id = ? AND item_id = ?
	`, item.Quantity, item.Total, item.MarginPercent, estimateID, itemID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка обновления позиции: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &item, nil
}
