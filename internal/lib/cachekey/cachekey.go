// Package cachekey вычисляет детерминированный ключ кэша для произвольных
// параметров запроса. Параметры сериализуются в каноничный JSON
// (ключи объектов отсортированы на всех уровнях), после чего берётся SHA-256.
// Два логически одинаковых набора параметров с разным порядком ключей
// дают одинаковый ключ.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Key возвращает hex-представление SHA-256 от каноничной сериализации params.
func Key(params any) (string, error) {
	const op = "cachekey.Key"
	canonical, err := Canonical(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:]), nil
}

// Canonical возвращает каноничный JSON: объекты сериализуются
// с отсортированными ключами, вложенность сохраняется.
func Canonical(params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := writeCanonical(&sb, decoded); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeCanonical(sb *strings.Builder, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte(',')
			}
			keyJSON, err := json.Marshal(k)
			if err != nil {
				return err
			}
			sb.Write(keyJSON)
			sb.WriteByte(':')
			if err := writeCanonical(sb, val[k]); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	case []any:
		sb.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeCanonical(sb, item); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return err
		}
		sb.Write(raw)
	}
	return nil
}
