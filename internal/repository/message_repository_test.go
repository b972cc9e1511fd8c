package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchTermMatchesLiterally(t *testing.T) {
	cases := []struct {
		term string
		want string
	}{
		{"hello", "hello"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{`%_\`, `\%\_\\`},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, likeEscaper.Replace(tc.term), "term %q", tc.term)
	}
}
