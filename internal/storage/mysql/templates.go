package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smeta-backend/internal/storage"
)

// UpsertTemplate сохраняет шаблон по названию: существующий шаблон с тем же
// названием получает новые позиции и сохраняет свой id.
func (s *Storage) UpsertTemplate(ctx context.Context, tpl *storage.Template) (string, error) {
	const op = "storage.mysql.UpsertTemplate"

	itemsJSON, err := json.Marshal(tpl.Items)
	if err != nil {
		return "", fmt.Errorf("%s: ошибка сериализации позиций: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO boq_templates (id, name, items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			items = VALUES(items),
			updated_at = VALUES(updated_at)
	`, tpl.ID, tpl.Name, string(itemsJSON), now, now)
	if err != nil {
		return "", fmt.Errorf("%s: ошибка сохранения шаблона в базу: %w", op, err)
	}

	var id string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM boq_templates WHERE name = ?`, tpl.Name).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: ошибка чтения id шаблона: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: commit: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetTemplate(ctx context.Context, id string) (*storage.Template, error) {
	const op = "storage.mysql.GetTemplate"

	query := `
		SELECT id, name, items, created_at, updated_at
		FROM boq_templates
		WHERE id = ?
	`

	tpl := &storage.Template{}

	// JSON позиций сканируем как строку
	var itemsJSON string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&tpl.ID, &tpl.Name, &itemsJSON, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: шаблон id='%s': %w", op, id, storage.ErrTemplateNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &tpl.Items); err != nil {
		return nil, fmt.Errorf("%s: ошибка парсинга JSON позиций: %w", op, err)
	}

	return tpl, nil
}

// ListTemplates - шаблоны от последних изменённых.
func (s *Storage) ListTemplates(ctx context.Context) ([]storage.TemplateSummary, error) {
	const op = "storage.mysql.ListTemplates"

	stmt := `SELECT id, name, JSON_LENGTH(items), updated_at FROM boq_templates ORDER BY updated_at DESC, name ASC`

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	templates := []storage.TemplateSummary{}
	for rows.Next() {
		var t storage.TemplateSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.ItemCount, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки: %w", op, err)
		}
		templates = append(templates, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return templates, nil
}

func (s *Storage) DeleteTemplate(ctx context.Context, id string) error {
	const op = "storage.mysql.DeleteTemplate"

	res, err := s.db.ExecContext(ctx, `DELETE FROM boq_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления шаблона: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: шаблон id='%s': %w", op, id, storage.ErrTemplateNotFound)
	}

	return nil
}
