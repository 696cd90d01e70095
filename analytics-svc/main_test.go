package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadSettings(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantCfg settings
	}{
		{
			name: "defaults",
			env:  map[string]string{"PORT": "", "APP_ENV": "", "DASHBOARD_ORDER_WINDOW": "", "PLAN_CACHE_TTL": "", "TOP_PRODUCTS_CACHE_TTL": "", "DASHBOARD_TZ": ""},
			wantCfg: settings{
				Addr: ":8084", Env: "development", Window: 500, PlanTTL: time.Minute, TopTTL: 5 * time.Minute, TZ: "UTC",
			},
		},
		{
			name: "overrides",
			env:  map[string]string{"PORT": "9400", "APP_ENV": "production", "DASHBOARD_ORDER_WINDOW": "200", "PLAN_CACHE_TTL": "30s", "TOP_PRODUCTS_CACHE_TTL": "1m", "DASHBOARD_TZ": "Europe/Belgrade"},
			wantCfg: settings{
				Addr: ":9400", Env: "production", Window: 200, PlanTTL: 30 * time.Second, TopTTL: time.Minute, TZ: "Europe/Belgrade",
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			for k, v := range testCase.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, testCase.wantCfg, loadSettings())
		})
	}
}
