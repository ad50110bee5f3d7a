package models

import (
	"encoding/json"
	"time"
)

// CacheEntry представляет кэшированный ответ генерации.
// Key — hex SHA-256 от каноничной сериализации параметров запроса.
// Просроченные записи отфильтровываются при чтении, но физически не удаляются.
type CacheEntry struct {
	Key        string          `json:"key"`
	Response   json.RawMessage `json:"response"`
	CreatedAt  time.Time       `json:"created_at"`
	Expiration time.Time       `json:"expiration"`
}

// WebsiteAnalysis представляет кэшированный результат анализа сайта,
// ключом служит нормализованный URL.
type WebsiteAnalysis struct {
	URLKey     string          `json:"url_key"`
	Analysis   json.RawMessage `json:"analysis"`
	CreatedAt  time.Time       `json:"created_at"`
	Expiration time.Time       `json:"expiration"`
}
