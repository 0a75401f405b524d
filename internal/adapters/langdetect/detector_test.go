package langdetect_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medassist/internal/adapters/langdetect"
)

func TestDetect(t *testing.T) {
	detector := langdetect.NewDetector()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "I have had a terrible headache and a high fever since yesterday evening", "en"},
		{"chinese", "我从昨天开始头痛得很厉害，而且还发高烧，我应该怎么办？", "zh"},
		{"russian", "У меня сильная головная боль и высокая температура со вчерашнего вечера", "ru"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detector.Detect(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_Empty(t *testing.T) {
	_, err := langdetect.NewDetector().Detect("   ")
	assert.True(t, errors.Is(err, langdetect.ErrUndetermined))
}
