package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want Level
	}{
		{"province", "330000", LevelProvince},
		{"municipality", "110000", LevelProvince},
		{"prefecture", "330100", LevelPrefecture},
		{"county", "330102", LevelCounty},
		{"county ending with single zero", "330110", LevelCounty},
		{"shanghai demonstration zone", "310052", LevelCounty},
		{"prefecture with zero in middle", "410900", LevelPrefecture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyCode(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyCode_Malformed(t *testing.T) {
	for _, code := range []string{"", "11000", "1100000", "11000a", "１１００００"} {
		t.Run(code, func(t *testing.T) {
			_, err := ClassifyCode(code)
			assert.True(t, errors.Is(err, ErrMalformedCode), "ClassifyCode(%q) = %v", code, err)
		})
	}
}

func TestIsMunicipality(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"110000", true},  // Пекин
		{"120000", true},  // Тяньцзинь
		{"310000", true},  // Шанхай
		{"500000", true},  // Чунцин
		{"330000", false}, // Чжэцзян
		{"440000", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMunicipality(tt.id))
		})
	}
}

func TestCodeError(t *testing.T) {
	var err error = &CodeError{Line: 7, Code: "1100"}

	assert.True(t, errors.Is(err, ErrMalformedCode))
	assert.Contains(t, err.Error(), "line 7")
	assert.Contains(t, err.Error(), `"1100"`)

	var codeErr *CodeError
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, 7, codeErr.Line)
}

func TestSamePrefix(t *testing.T) {
	assert.True(t, SamePrefix("330102", "330100", 4))
	assert.False(t, SamePrefix("330201", "330100", 4))
	assert.True(t, SamePrefix("330100", "330000", 2))
	assert.False(t, SamePrefix("33", "330000", 4))
}
