// Package repository реализует хранилище данных на основе PostgreSQL
// для профилей с кредитным балансом, журнала кредитов, кэша ответов
// генерации, интеграций с рекламными платформами, команд и шаблонов.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища, на которые опирается бизнес-логика.
var (
	// ErrInsufficientCredits баланс меньше запрошенного списания.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrAlreadyClaimed бесплатные кредиты уже были начислены этому пользователю.
	ErrAlreadyClaimed = errors.New("free credits already claimed")
	// ErrNotFound запрошенная запись отсутствует.
	ErrNotFound = errors.New("not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'profiles'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table profiles missing or query error: %w", err)
	}
	return nil
}
