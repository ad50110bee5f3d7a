package models

import (
	"encoding/json"
	"time"
)

// Шаги мастера создания кампании. Переходы строго линейные,
// номер шага всегда остаётся в пределах [StepWebsiteAnalysis, StepSummary].
const (
	StepWebsiteAnalysis   = 1
	StepPlatformSelection = 2
	StepMindTrigger       = 3
	StepCampaignSetup     = 4
	StepAdGeneration      = 5
	StepAdPreview         = 6
	StepSummary           = 7
)

// CampaignDraft представляет сохранённое состояние мастера кампании.
// Data накапливает данные всех пройденных шагов одним JSON-объектом.
type CampaignDraft struct {
	ID        int64           `json:"id"`
	UserUID   string          `json:"-"`
	Step      int             `json:"step"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
