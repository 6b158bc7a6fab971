package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"empty", "", ""},
		{"blank", "   \t ", ""},
		{"punctuation only", "¡¿!?.,-'", ""},
		{"NaN", math.NaN(), ""},
		{"simple", "Juan Perez", "juan perez"},
		{"token order", "Perez Juan", "juan perez"},
		{"extra spaces", "  Maria   Ana  ", "ana maria"},
		{"apostrophe and comma", "O'Brien, Jr.", "jr obrien"},
		{"underscore is punctuation", "Ana_Maria", "anamaria"},
		{"accents kept", "José Núñez", "josé núñez"},
		{"decomposed accent", "Jose\u0301", "josé"},
		{"non-latin script", "Иван Петров", "иван петров"},
		{"nbsp is whitespace", "Ana\u00a0Maria", "ana maria"},
		{"digits", "Agent 007", "007 agent"},
		{"float without trailing zeros", 42.0, "42"},
		{"int", 7, "7"},
		{"bytes", []byte("Zoe"), "zoe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []any{
		"O'Brien, Jr.",
		"  Maria   Ana  ",
		"José Núñez-García",
		"Jose\u0301 Garci\u0301a",
		"İSTANBUL Şehir",
		"ǅemal ß Straße",
		"北京 上海",
		"\u1100.\u1161 \u1112-\u1161\u11ab",
		"Ana Maria Lopez",
		12.5,
		nil,
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeComposesAfterStripping(t *testing.T) {
	// leading consonant and vowel jamo only meet once the dot is gone
	assert.Equal(t, "\uac00", Normalize("\u1100.\u1161"))
	assert.Equal(t, Normalize("\uac00"), Normalize("\u1100\u1161"))
}

func TestNormalizeTokenOrderInvariant(t *testing.T) {
	assert.Equal(t, Normalize("Ana Maria"), Normalize("Maria Ana"))
	assert.Equal(t, Normalize("García López, Juan"), Normalize("Juan López García"))
}

func TestNormalizeStripsPunctuation(t *testing.T) {
	assert.Equal(t, Normalize("OBrien Jr"), Normalize("O'Brien, Jr."))
}
