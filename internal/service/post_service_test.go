package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlatforms(t *testing.T) {
	t.Run("valid list", func(t *testing.T) {
		names, err := parsePlatforms(`["facebook","twitter"]`)
		assert.NoError(t, err)
		assert.Equal(t, []string{"facebook", "twitter"}, names)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := parsePlatforms(`facebook,twitter`)
		assert.Error(t, err)
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := parsePlatforms(`[]`)
		assert.Error(t, err)
	})

	t.Run("unknown platform", func(t *testing.T) {
		_, err := parsePlatforms(`["myspace"]`)
		assert.ErrorContains(t, err, "unknown platform")
	})

	t.Run("duplicate platform", func(t *testing.T) {
		_, err := parsePlatforms(`["facebook","facebook"]`)
		assert.ErrorContains(t, err, "duplicate platform")
	})
}

func TestParseStringList(t *testing.T) {
	list, err := parseStringList(`["golang","backend"]`)
	assert.NoError(t, err)
	assert.Equal(t, []string{"golang", "backend"}, list)

	list, err = parseStringList("")
	assert.NoError(t, err)
	assert.Nil(t, list)

	_, err = parseStringList("not json")
	assert.Error(t, err)
}

func TestComposeBody(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		hashtags []string
		mentions []string
		expected string
	}{
		{
			name:     "nothing to add",
			body:     "plain post",
			expected: "plain post",
		},
		{
			name:     "appends missing hashtags",
			body:     "launch day",
			hashtags: []string{"golang", "#release"},
			expected: "launch day\n\n#golang #release",
		},
		{
			name:     "skips hashtags already in the body",
			body:     "launch day #golang",
			hashtags: []string{"golang", "release"},
			expected: "launch day #golang\n\n#release",
		},
		{
			name:     "appends missing mentions",
			body:     "thanks team",
			mentions: []string{"alice", "@bob"},
			expected: "thanks team\n\n@alice @bob",
		},
		{
			name:     "mixed tags and mentions",
			body:     "shoutout @alice",
			hashtags: []string{"news"},
			mentions: []string{"alice", "bob"},
			expected: "shoutout @alice\n\n#news @bob",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, composeBody(tc.body, tc.hashtags, tc.mentions))
		})
	}
}
