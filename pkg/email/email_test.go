package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameIdentity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "identical", a: "a@x.com", b: "a@x.com", want: true},
		{name: "case and whitespace", a: "  A@X.com ", b: "a@x.COM", want: true},
		{name: "longer local part", a: "a@x.com", b: "ab@x.com", want: false},
		{name: "truncated domain", a: "a@x.com", b: "a@x.co", want: false},
		{name: "empty never matches", a: "", b: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameIdentity(tt.a, tt.b))
		})
	}
}

func TestDeriveNameFromEmail(t *testing.T) {
	first, last := DeriveNameFromEmail("jane.doe@example.com")
	assert.Equal(t, "Jane", first)
	assert.Equal(t, "Doe", last)

	first, last = DeriveNameFromEmail("solo@example.com")
	assert.Equal(t, "Solo", first)
	assert.Equal(t, "User", last)

	first, last = DeriveNameFromEmail("+.@example.com")
	assert.Equal(t, "User", first)
	assert.Equal(t, "User", last)
}
