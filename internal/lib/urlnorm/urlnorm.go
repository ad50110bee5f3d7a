// Package urlnorm нормализует URL сайта для использования в качестве ключа
// кэша анализа: схема и хост приводятся к нижнему регистру, префикс www.
// и завершающий слэш убираются, фрагмент отбрасывается.
package urlnorm

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize возвращает нормализованный ключ для rawURL.
// URL без схемы считается https.
func Normalize(rawURL string) (string, error) {
	const op = "urlnorm.Normalize"

	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%s: empty url", op)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%s: url has no host: %s", op, rawURL)
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")

	path := strings.TrimSuffix(u.Path, "/")

	return host + path, nil
}
