package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		want    string
		wantErr bool
	}{
		{
			name:   "обычный url",
			rawURL: "https://example.com/pricing",
			want:   "example.com/pricing",
		},
		{
			name:   "www и завершающий слэш убираются",
			rawURL: "https://www.Example.COM/pricing/",
			want:   "example.com/pricing",
		},
		{
			name:   "url без схемы",
			rawURL: "example.com",
			want:   "example.com",
		},
		{
			name:   "фрагмент и регистр хоста",
			rawURL: "HTTP://WWW.Shop.Example.com/#section",
			want:   "shop.example.com",
		},
		{
			name:   "путь сохраняет регистр",
			rawURL: "https://example.com/About/Us",
			want:   "example.com/About/Us",
		},
		{
			name:    "пустая строка",
			rawURL:  "",
			wantErr: true,
		},
		{
			name:    "только пробелы",
			rawURL:  "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.rawURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_SameKeyForEquivalentURLs(t *testing.T) {
	a, err := Normalize("https://www.example.com/landing/")
	require.NoError(t, err)
	b, err := Normalize("example.com/landing")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
