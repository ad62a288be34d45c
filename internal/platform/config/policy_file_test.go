package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartoes/internal/eligibility"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPolicyEmptyPathReturnsDefaults(t *testing.T) {
	policy, err := LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, eligibility.DefaultPolicy(), policy)
}

func TestLoadPolicyOverlaysFile(t *testing.T) {
	path := writePolicy(t, `
minimum_age: 21
sp_state: rj
young_client:
  max: 26
products:
  no_annual_fee:
    min_income: 3500.00
  partner:
    min_income: "5500.00"
    monthly_fee: 25.50
`)

	policy, err := LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, 21, policy.MinimumAge)
	assert.Equal(t, eligibility.AgeBand{Min: 21, Max: 26}, policy.YoungClient())
	assert.Equal(t, "RJ", policy.SPState)
	assert.True(t, policy.NoAnnualFee.MinIncome.Equal(decimal.RequireFromString("3500")))
	assert.True(t, policy.Partner.MinIncome.Equal(decimal.RequireFromString("5500")))
	assert.True(t, policy.Partner.MonthlyFee.Equal(decimal.RequireFromString("25.50")))
	assert.True(t, policy.Partner.CreditLimit.Equal(decimal.RequireFromString("3000")), "unset fields keep defaults")
	assert.True(t, policy.Cashback.MinIncome.Equal(decimal.RequireFromString("5000")))
}

func TestLoadPolicyRejectsBandGap(t *testing.T) {
	path := writePolicy(t, `
income_bands:
  medium:
    min: 3200.00
`)

	_, err := LoadPolicy(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, eligibility.ErrInvalidPolicy)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, path, le.Path)
}

func TestLoadPolicyRejectsBadAmount(t *testing.T) {
	path := writePolicy(t, `
products:
  cashback:
    credit_limit: lots
`)

	_, err := LoadPolicy(path)
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "products.cashback.credit_limit", le.Field)
	assert.Equal(t, path, le.Path)
}

func TestLoadPolicyMissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPolicyMalformedYAML(t *testing.T) {
	_, err := LoadPolicy(writePolicy(t, "minimum_age: [unterminated"))
	require.Error(t, err)
}

func TestSamplePoliciesLoad(t *testing.T) {
	for _, name := range []string{"policy.yaml", "policy.strict.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPolicy(filepath.Join("..", "..", "..", "config", name))
			require.NoError(t, err)
		})
	}
}
