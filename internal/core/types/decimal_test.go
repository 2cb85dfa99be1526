package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundingTiers(t *testing.T) {
	tests := []struct {
		name  string
		round func(d string) string
		in    string
		want  string
	}{
		{"quantity rounds to 4dp", func(d string) string { return RoundQuantity(MustDecimal(d)).String() }, "1.23456", "1.2346"},
		{"quantity keeps shorter values", func(d string) string { return RoundQuantity(MustDecimal(d)).String() }, "1.5", "1.5"},
		{"base quantity rounds to 6dp", func(d string) string { return RoundBaseQuantity(MustDecimal(d)).String() }, "0.12345678", "0.123457"},
		{"money rounds to 2dp", func(d string) string { return RoundMoney(MustDecimal(d)).String() }, "17.499999", "17.5"},
		{"money half up", func(d string) string { return RoundMoney(MustDecimal(d)).String() }, "2.005", "2.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.round(tt.in))
		})
	}
}

func TestMustDecimalPanicsOnGarbage(t *testing.T) {
	assert.Panics(t, func() { MustDecimal("not-a-number") })
}
