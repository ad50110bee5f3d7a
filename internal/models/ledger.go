package models

import "time"

// LedgerEntry представляет одну запись журнала кредитов.
// Журнал только пополняется: записи никогда не изменяются и не удаляются.
// Change отрицательный для списания и положительный для начисления.
type LedgerEntry struct {
	ID        int64     `json:"id"`
	UserUID   string    `json:"user_uid"`
	Change    int       `json:"change"`
	Reason    string    `json:"reason"`
	RefID     string    `json:"ref_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BillingEvent фиксирует обработанное событие платёжного провайдера.
// Первичный ключ по EventID защищает от повторной обработки дубликатов вебхука.
type BillingEvent struct {
	EventID     string
	EventType   string
	ProcessedAt time.Time
}
