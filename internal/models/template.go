package models

import "time"

// PromptTemplate представляет шаблон промпта для генерации объявлений.
// Шаблоны с пустым UserUID — встроенные, доступны всем и не удаляются.
type PromptTemplate struct {
	ID        int64     `json:"id"`
	UserUID   string    `json:"-"`
	Name      string    `json:"name"`
	Platform  string    `json:"platform"`
	Body      string    `json:"body"`
	Builtin   bool      `json:"builtin"`
	CreatedAt time.Time `json:"created_at"`
}

// DummyPromptTemplate используется для приёма данных из JSON-запроса.
type DummyPromptTemplate struct {
	Name     string `json:"name" validate:"required"`
	Platform string `json:"platform" validate:"required"`
	Body     string `json:"body" validate:"required"`
}
