package pricing

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategies = []Strategy{StrategyClosedForm, StrategyBisection}

func TestSolve_DefaultScenario(t *testing.T) {
	for _, st := range strategies {
		t.Run(string(st), func(t *testing.T) {
			cfg := DefaultConfig()

			sol := SolveWith(cfg, st)

			assert.Equal(t, 85000.0, sol.SellingPrice)
			assert.Equal(t, 0.0, math.Mod(sol.SellingPrice, 500))
			assert.GreaterOrEqual(t, sol.NetMargin*100, 20.0)
			assert.True(t, sol.Feasible)
			assert.Equal(t, st, sol.Strategy)
			assert.Equal(t, ModeTargetProfit, sol.Mode)

			below := Evaluate(sol.SellingPrice-500, cfg)
			assert.Less(t, below.NetMargin*100, 20.0)
		})
	}
}

func TestSolve_ProfitTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = Target{Kind: TargetProfit, Value: 10000}
	cfg.Rounding = RoundNearest1000

	for _, st := range strategies {
		t.Run(string(st), func(t *testing.T) {
			sol := SolveWith(cfg, st)

			assert.Equal(t, 77000.0, sol.SellingPrice)
			assert.GreaterOrEqual(t, sol.NetProfit, 10000.0)
			assert.Less(t, Evaluate(76000, cfg).NetProfit, 10000.0)
			assert.True(t, sol.Feasible)
		})
	}
}

// The strategies agree whenever the answer lies inside the bisection interval
// [unitCost, unitCost*100]. Above it only the closed form finds the price.
func TestSolve_StrategiesAgreeWithinSearchRange(t *testing.T) {
	cfgs := map[string]Config{"defaults": DefaultConfig(), "mixed": mixedConfig()}
	for name, cfg := range cfgs {
		cfg.Rounding = RoundNone
		t.Run(name, func(t *testing.T) {
			closed := SolveWith(cfg, StrategyClosedForm)
			bisected := SolveWith(cfg, StrategyBisection)

			assert.InDelta(t, closed.RawPrice, bisected.RawPrice, 1e-3)
			assert.True(t, closed.Feasible)
			assert.True(t, bisected.Feasible)
		})
	}
}

func TestSolve_StrategiesDivergeAboveSearchCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UnitCost = 1000
	cfg.PackagingCost = 0
	cfg.Target = Target{Kind: TargetProfit, Value: 1e6}
	cfg.Rounding = RoundNone

	closed := SolveWith(cfg, StrategyClosedForm)
	bisected := SolveWith(cfg, StrategyBisection)

	assert.Greater(t, closed.SellingPrice, cfg.UnitCost*100)
	assert.True(t, closed.Feasible)
	assert.GreaterOrEqual(t, closed.NetProfit, 1e6)

	assert.Equal(t, cfg.UnitCost*100, bisected.SellingPrice)
	assert.False(t, bisected.Feasible)
}

func TestSolve_MeetsTargetExactlyWithoutRounding(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))

	for i := 0; i < 5000; i++ {
		cfg := randomConfig(rng)

		for _, st := range strategies {
			sol := SolveWith(cfg, st)
			if !sol.Feasible {
				// Bisection can stop at its ceiling for large profit targets.
				require.Equal(t, StrategyBisection, st, "config %d: %+v", i, cfg)
				require.Equal(t, cfg.UnitCost*searchCeilingFactor, sol.SellingPrice)
				continue
			}

			if cfg.Target.Kind == TargetProfit {
				require.GreaterOrEqual(t, sol.NetProfit, cfg.Target.Value, "%s config %d: %+v", st, i, cfg)
			} else {
				require.GreaterOrEqual(t, sol.NetMargin*100, cfg.Target.Value, "%s config %d: %+v", st, i, cfg)
			}
		}
	}
}

func randomConfig(rng *rand.Rand) Config {
	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	charge := func(maxPercent, maxFlat float64) Charge {
		if rng.IntN(2) == 0 {
			return Percent(math.Round(between(0, maxPercent)*10) / 10)
		}
		return Flat(math.Round(between(0, maxFlat)))
	}

	cfg := DefaultConfig()
	cfg.Rounding = RoundNone
	cfg.UnitCost = math.Round(between(1000, 200000))
	cfg.PackagingCost = math.Round(between(0, 5000))
	cfg.HandlingCost = math.Round(between(0, 3000))
	cfg.ReturnRate = math.Round(between(0, 10)*10) / 10
	cfg.AdminFee = math.Round(between(0, 10)*10) / 10
	cfg.TransactionFee = math.Round(between(0, 5)*10) / 10
	cfg.OtherPlatformFee = charge(3, 2000)
	cfg.Voucher = charge(10, 5000)
	cfg.Cashback = math.Round(between(0, 5)*10) / 10
	cfg.Ads = charge(15, 10000)
	cfg.ShippingSubsidy = math.Round(between(0, 5000))
	cfg.Overhead = charge(5, 3000)
	cfg.TaxReserve = math.Round(between(0, 2)*10) / 10

	if rng.IntN(2) == 0 {
		cfg.Target = Target{Kind: TargetMargin, Value: math.Round(between(1, 40)*10) / 10}
	} else {
		cfg.Target = Target{Kind: TargetProfit, Value: math.Round(between(0, 50000))}
	}
	return cfg
}

func TestSolve_EvaluationCount(t *testing.T) {
	assert.Equal(t, 51, SolveWith(DefaultConfig(), StrategyBisection).Evaluations)
	closed := SolveWith(DefaultConfig(), StrategyClosedForm).Evaluations
	assert.GreaterOrEqual(t, closed, 2, "one check of the solved price plus the final evaluation")
	assert.Less(t, closed, 51)
	assert.Equal(t, 1, Calculate(forwardConfig(), StrategyBisection).Evaluations)
}

func TestSolve_RoundingOnlyMovesUp(t *testing.T) {
	for _, st := range strategies {
		for target := 5.0; target <= 45; target += 5 {
			t.Run(fmt.Sprintf("%s/%.0f", st, target), func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.Target.Value = target

				sol := SolveWith(cfg, st)

				assert.GreaterOrEqual(t, sol.SellingPrice, sol.RawPrice)
				assert.Less(t, sol.SellingPrice-sol.RawPrice, 500.0)
				assert.Equal(t, 0.0, math.Mod(sol.SellingPrice, 500))
				assert.True(t, sol.Feasible)
			})
		}
	}
}

func TestSolve_ResultMatchesReevaluation(t *testing.T) {
	for _, st := range strategies {
		for _, r := range []Rounding{RoundNone, RoundNearest500, RoundNearest1000} {
			t.Run(string(st)+"/"+string(r), func(t *testing.T) {
				cfg := mixedConfig()
				cfg.Rounding = r

				sol := SolveWith(cfg, st)

				require.Equal(t, Evaluate(sol.SellingPrice, cfg), sol.Result)
			})
		}
	}
}

func TestSolve_UnreachableTargetReturnsCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminFee = 70
	cfg.TransactionFee = 30
	cfg.Rounding = RoundNone

	for _, st := range strategies {
		t.Run(string(st), func(t *testing.T) {
			sol := SolveWith(cfg, st)

			assert.Equal(t, cfg.UnitCost*100, sol.SellingPrice)
			assert.False(t, sol.Feasible)
		})
	}

	t.Run("margin target above the remaining rate", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Target.Value = 85

		sol := Solve(cfg)

		assert.Equal(t, cfg.UnitCost*100, sol.SellingPrice)
		assert.False(t, sol.Feasible)
	})
}

func TestSolve_ClosedFormFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = Target{Kind: TargetProfit, Value: -100000}
	cfg.Rounding = RoundNone

	sol := Solve(cfg)

	assert.Equal(t, cfg.UnitCost, sol.SellingPrice)
	assert.True(t, sol.Feasible)
}

func TestCalculate_DispatchesOnMode(t *testing.T) {
	forward := Calculate(forwardConfig(), StrategyClosedForm)
	assert.Equal(t, ModeGivenPrice, forward.Mode)
	assert.Equal(t, 100000.0, forward.SellingPrice)
	assert.Equal(t, 100000.0, forward.RawPrice)
	assert.True(t, forward.Feasible, "29.5 percent margin beats the 20 percent target")
	assert.Empty(t, forward.Strategy)

	cfg := forwardConfig()
	cfg.ManualPrice = 60000
	assert.False(t, Calculate(cfg, StrategyClosedForm).Feasible)

	inverse := Calculate(DefaultConfig(), "")
	assert.Equal(t, StrategyClosedForm, inverse.Strategy)
	assert.Equal(t, 85000.0, inverse.SellingPrice)
}

func TestRoundUp(t *testing.T) {
	tests := []struct {
		price float64
		r     Rounding
		want  float64
	}{
		{84552.85, RoundNone, 84552.85},
		{84552.85, RoundNearest500, 85000},
		{85000, RoundNearest500, 85000},
		{1, RoundNearest500, 500},
		{1001, RoundNearest1000, 2000},
		{76073.6, RoundNearest1000, 77000},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RoundUp(tc.price, tc.r), "%v %s", tc.price, tc.r)
	}
}

func TestParseStrategy(t *testing.T) {
	st, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyClosedForm, st)

	st, err = ParseStrategy("bisection")
	require.NoError(t, err)
	assert.Equal(t, StrategyBisection, st)

	_, err = ParseStrategy("newton")
	assert.Error(t, err)
}
