package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRun_DefaultsJSON(t *testing.T) {
	out, errOut, code := runCLI(t, "-json")
	require.Equal(t, 0, code, errOut)

	var sol pricing.Solution
	require.NoError(t, json.Unmarshal([]byte(out), &sol))
	assert.Equal(t, 85000.0, sol.SellingPrice)
	assert.Equal(t, pricing.StrategyClosedForm, sol.Strategy)
	assert.True(t, sol.Feasible)
}

func TestRun_FlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kaos.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"product_name":"Kaos","unit_cost":40000}`), 0o644))

	out, errOut, code := runCLI(t, "-config", path, "-price", "60000", "-ads", "5000", "-json")
	require.Equal(t, 0, code, errOut)

	var sol pricing.Solution
	require.NoError(t, json.Unmarshal([]byte(out), &sol))
	assert.Equal(t, pricing.ModeGivenPrice, sol.Mode)
	assert.Equal(t, 60000.0, sol.SellingPrice)
	// 60000 - 42000 - 6300 - 5000
	assert.InDelta(t, 6700, sol.NetProfit, 1e-6)
}

func TestRun_SummaryAndCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out.csv")

	out, errOut, code := runCLI(t, "-summary", "-csv", csvPath, "-ads-preset", "normal")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Selling price: 85.000")
	assert.Contains(t, out, "Margin: 20.32%")

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Selling Price,85000\n")
}

func TestRun_TableShowsMissingHeadroom(t *testing.T) {
	out, errOut, code := runCLI(t, "-price", "60000", "-product", "Kaos Polos")
	require.Equal(t, 0, code, errOut)

	assert.Contains(t, out, "Kaos Polos")
	assert.Contains(t, out, "Net profit")
	assert.Contains(t, out, "-3.100")
	assert.Contains(t, out, "no room")
	assert.Contains(t, out, "missed")
}

func TestRun_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad number", []string{"-unit-cost", "abc"}, "not a number"},
		{"bad strategy", []string{"-strategy", "newton"}, "unknown solver strategy"},
		{"bad preset", []string{"-ads-preset", "huge"}, "unknown ads preset"},
		{"invalid config", []string{"-admin-fee", "150"}, "admin_fee must be between 0 and 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errOut, code := runCLI(t, tt.args...)
			assert.Equal(t, 2, code)
			assert.Contains(t, errOut, tt.want)
		})
	}
}

func TestParseCharge(t *testing.T) {
	c, err := parseCharge("8%")
	require.NoError(t, err)
	assert.Equal(t, pricing.Percent(8), c)

	c, err = parseCharge(" 3000 ")
	require.NoError(t, err)
	assert.Equal(t, pricing.Flat(3000), c)

	_, err = parseCharge("x%")
	assert.Error(t, err)
}
