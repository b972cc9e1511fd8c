package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePlan(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	cases := []struct {
		name      string
		plan      string
		expiresAt *time.Time
		expected  string
	}{
		{"free never expires", PlanFree, nil, PlanFree},
		{"paid without expiry", PlanPro, nil, PlanPro},
		{"paid still valid", PlanBasic, &future, PlanBasic},
		{"paid expired", PlanPro, &past, PlanFree},
		{"enterprise expired", PlanEnterprise, &past, PlanFree},
		{"free with stale expiry stays free", PlanFree, &past, PlanFree},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &User{Plan: tc.plan, PlanExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.expected, u.EffectivePlan(now))
		})
	}
}
