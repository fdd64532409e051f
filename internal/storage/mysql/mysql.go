package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const (
	errDuplicateEntry     = 1062
	errFulltextKeyMissing = 1191
)

type Storage struct {
	db *sql.DB
}

func New(dsn string) (*Storage, error) {
	const op = "storage.mysql.New"

	if _, err := mysql.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("%s: некорректный DSN: %w", op, err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id        VARCHAR(64)  NOT NULL PRIMARY KEY,
		name      VARCHAR(255) NOT NULL,
		unit      VARCHAR(32)  NOT NULL DEFAULT '',
		price     DOUBLE       NOT NULL DEFAULT 0,
		currency  CHAR(3)      NOT NULL DEFAULT 'AZN',
		price_azn DOUBLE       NULL,
		category  VARCHAR(128) NOT NULL DEFAULT '',
		source    VARCHAR(255) NOT NULL DEFAULT '',
		note      TEXT         NULL,
		FULLTEXT KEY ft_products (name, source, note, category)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS boq_templates (
		id         CHAR(36)     NOT NULL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		items      JSON         NOT NULL,
		created_at DATETIME     NOT NULL,
		updated_at DATETIME     NOT NULL,
		UNIQUE KEY uq_boq_templates_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS estimates (
		id           BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name         VARCHAR(255) NOT NULL,
		string_count INT          NOT NULL DEFAULT 0,
		next_id      INT          NOT NULL DEFAULT 1
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS estimate_items (
		estimate_id    BIGINT       NOT NULL,
		item_id        INT          NOT NULL,
		name           VARCHAR(255) NOT NULL,
		quantity       DOUBLE       NOT NULL,
		unit           VARCHAR(32)  NOT NULL DEFAULT '',
		unit_price     DOUBLE       NOT NULL DEFAULT 0,
		currency       CHAR(3)      NOT NULL DEFAULT 'AZN',
		unit_price_azn DOUBLE       NOT NULL DEFAULT 0,
		total          DOUBLE       NOT NULL DEFAULT 0,
		margin_percent DOUBLE       NOT NULL DEFAULT 0,
		category       VARCHAR(128) NOT NULL DEFAULT '',
		source         VARCHAR(255) NOT NULL DEFAULT '',
		note           TEXT         NULL,
		is_custom      BOOLEAN      NOT NULL DEFAULT FALSE,
		product_id     VARCHAR(64)  NULL,
		quantity_round BOOLEAN      NOT NULL DEFAULT FALSE,
		price_round    BOOLEAN      NOT NULL DEFAULT FALSE,
		PRIMARY KEY (estimate_id, item_id),
		CONSTRAINT fk_estimate_items_estimate FOREIGN KEY (estimate_id) REFERENCES estimates (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS currency_rates (
		code       CHAR(3)  NOT NULL PRIMARY KEY,
		rate       DOUBLE   NOT NULL,
		updated_at DATETIME NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate создаёт таблицы, если их нет.
func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.mysql.Migrate"

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

func mysqlErrNumber(err error) uint16 {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}
