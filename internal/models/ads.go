package models

// Платформы, для которых генерируются объявления.
const (
	PlatformGoogle    = "google"
	PlatformMeta      = "meta"
	PlatformLinkedIn  = "linkedin"
	PlatformMicrosoft = "microsoft"
)

// KnownPlatforms возвращает список поддерживаемых платформ.
func KnownPlatforms() []string {
	return []string{PlatformGoogle, PlatformMeta, PlatformLinkedIn, PlatformMicrosoft}
}

// IsKnownPlatform проверяет, поддерживается ли платформа.
func IsKnownPlatform(p string) bool {
	switch p {
	case PlatformGoogle, PlatformMeta, PlatformLinkedIn, PlatformMicrosoft:
		return true
	}
	return false
}

// Ad представляет одно сгенерированное объявление для конкретной платформы.
type Ad struct {
	Platform     string `json:"platform"`
	Headline     string `json:"headline"`
	Body         string `json:"body"`
	CallToAction string `json:"call_to_action"`
	ImagePrompt  string `json:"image_prompt,omitempty"`
	Fallback     bool   `json:"fallback,omitempty"` // true, если объявление собрано из шаблона после сбоя генерации
}

// GenerateAdsRequest параметры запроса генерации объявлений из JSON-запроса.
type GenerateAdsRequest struct {
	Platforms   []string `json:"platforms" validate:"required,min=1"`
	ProductName string   `json:"product_name" validate:"required"`
	ProductInfo string   `json:"product_info"`
	MindTrigger string   `json:"mind_trigger"`
	Language    string   `json:"language"`
	Count       int      `json:"count" validate:"omitempty,gt=0,lte=10"`
}

// GenerateAdsResult результат генерации вместе с признаком попадания в кэш.
type GenerateAdsResult struct {
	Ads       []Ad `json:"ads"`
	FromCache bool `json:"from_cache"`
}
