package resolver

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		wantPasses int
	}{
		{
			name:       "plain URL is unchanged",
			input:      "https://example.com/a.png",
			want:       "https://example.com/a.png",
			wantPasses: 0,
		},
		{
			name:       "single encoding",
			input:      "https%3A%2F%2Fexample.com%2Fa.png",
			want:       "https://example.com/a.png",
			wantPasses: 1,
		},
		{
			name:       "double encoding",
			input:      "https%253A%252F%252Fexample.com%252Fa.png",
			want:       "https://example.com/a.png",
			wantPasses: 2,
		},
		{
			name:       "triple encoding",
			input:      "https%25253A%25252F%25252Fexample.com%25252Fa.png",
			want:       "https://example.com/a.png",
			wantPasses: 3,
		},
		{
			name:       "malformed escape returns the input",
			input:      "https://example.com/100%zz.png",
			want:       "https://example.com/100%zz.png",
			wantPasses: 0,
		},
		{
			name:       "malformed escape after a good pass keeps the last good value",
			input:      "https%3A%2F%2Fexample.com%2F100%25zz.png",
			want:       "https://example.com/100%zz.png",
			wantPasses: 1,
		},
		{
			name:       "trailing percent sign",
			input:      "https://example.com/a.png?discount=50%",
			want:       "https://example.com/a.png?discount=50%",
			wantPasses: 0,
		},
		{
			name:       "plus sign is kept",
			input:      "https%3A%2F%2Fexample.com%2Fa+b.png",
			want:       "https://example.com/a+b.png",
			wantPasses: 1,
		},
		{
			name:       "empty string",
			input:      "",
			want:       "",
			wantPasses: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, passes := ResolveWithPasses(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantPasses, passes)
			assert.Equal(t, tt.want, Resolve(tt.input))
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	inputs := []string{
		"https://ae01.alicdn.com/kf/S48cec483fac04ff9b5d824a4760f021ff/48x48.png",
		"https%3A%2F%2Fae01.alicdn.com%2Fkf%2FS48cec483fac04ff9b5d824a4760f021ff%2F48x48.png",
		"https%253A%252F%252Fexample.com%252Fimg.webp%253Fw%253D100",
		"50%off",
	}

	for _, input := range inputs {
		once := Resolve(input)
		assert.Equal(t, once, Resolve(once), "input %q", input)
	}
}

func TestResolveIsBounded(t *testing.T) {
	// Строка, которая раскрывается на каждом проходе дольше лимита
	input := "https://example.com/a.png"
	for i := 0; i < MaxDecodePasses+5; i++ {
		input = url.PathEscape(input)
	}

	got, passes := ResolveWithPasses(input)
	assert.Equal(t, MaxDecodePasses, passes)
	assert.True(t, strings.Contains(got, "%"))
}
