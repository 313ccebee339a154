package pointer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_To(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give any
	}{
		{name: "account id", give: "trigger.testnet"},
		{name: "time", give: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{name: "uint8", give: uint8(24)},
		{name: "uint64", give: uint64(200_000_000_000_000)},
		{name: "bool", give: true},
		{name: "struct", give: struct{ Multiplier string }{Multiplier: "100000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.give, *To(tt.give))
		})
	}
}

func Test_To_Copies(t *testing.T) {
	t.Parallel()

	v := "a.testnet"
	p := To(v)
	v = "b.testnet"

	assert.Equal(t, "a.testnet", *p)
	assert.NotSame(t, &v, p)
}
