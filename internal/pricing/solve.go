package pricing

import (
	"fmt"
	"math"
)

// Strategy selects how the solver finds the target price.
type Strategy string

const (
	// StrategyClosedForm solves the affine profit equation directly.
	StrategyClosedForm Strategy = "closed_form"
	// StrategyBisection runs a fixed-length binary search over [unitCost, unitCost*100].
	StrategyBisection Strategy = "bisection"
)

const (
	bisectionIterations = 50
	searchCeilingFactor = 100
	maxNudges           = 128
)

// ParseStrategy validates a strategy string. An empty string selects the closed form.
func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(s); st {
	case "":
		return StrategyClosedForm, nil
	case StrategyClosedForm, StrategyBisection:
		return st, nil
	}
	return "", fmt.Errorf("unknown solver strategy %q", s)
}

// Solution is the outcome of a calculation: the Result at the final price plus how it
// was obtained.
type Solution struct {
	Result

	Mode     Mode     `json:"mode"`
	Strategy Strategy `json:"strategy,omitempty"`
	// RawPrice is the solver's price before rounding, or the manual price in forward mode.
	RawPrice float64 `json:"raw_price"`
	// Feasible reports whether Result meets the configured target.
	Feasible    bool `json:"feasible"`
	Evaluations int  `json:"evaluations"`
}

// Calculate runs the calculation selected by cfg.Mode.
func Calculate(cfg Config, strategy Strategy) Solution {
	if cfg.Mode == ModeGivenPrice {
		res := Evaluate(cfg.ManualPrice, cfg)
		return Solution{
			Result:      res,
			Mode:        ModeGivenPrice,
			RawPrice:    cfg.ManualPrice,
			Feasible:    MeetsTarget(res, cfg.Target),
			Evaluations: 1,
		}
	}
	return SolveWith(cfg, strategy)
}

// Solve finds the lowest price meeting cfg.Target using the closed-form strategy.
func Solve(cfg Config) Solution {
	return SolveWith(cfg, StrategyClosedForm)
}

// SolveWith finds the lowest price meeting cfg.Target, applies cfg.Rounding and
// evaluates the breakdown at the rounded price.
func SolveWith(cfg Config, strategy Strategy) Solution {
	var raw float64
	var evals int
	switch strategy {
	case StrategyBisection:
		raw, evals = bisect(cfg)
	default:
		strategy = StrategyClosedForm
		raw, evals = closedForm(cfg)
	}

	res := Evaluate(RoundUp(raw, cfg.Rounding), cfg)
	return Solution{
		Result:      res,
		Mode:        ModeTargetProfit,
		Strategy:    strategy,
		RawPrice:    raw,
		Feasible:    MeetsTarget(res, cfg.Target),
		Evaluations: evals + 1,
	}
}

// searchBounds is the price interval the bisection explores. The closed form uses the
// same bounds as its floor and as its answer for unreachable targets.
func searchBounds(cfg Config) (low, high float64) {
	return cfg.UnitCost, cfg.UnitCost * searchCeilingFactor
}

func bisect(cfg Config) (price float64, evals int) {
	low, high := searchBounds(cfg)
	solution := high
	for i := 0; i < bisectionIterations; i++ {
		mid := (low + high) / 2
		res := Evaluate(mid, cfg)
		evals++
		if MeetsTarget(res, cfg.Target) {
			solution = mid
			high = mid
		} else {
			low = mid
		}
	}
	return solution, evals
}

// closedForm solves the affine profit equation for the target price, then steps up
// until the evaluated result meets the target with no tolerance. Unreachable targets
// return the bisection ceiling.
func closedForm(cfg Config) (price float64, evals int) {
	low, high := searchBounds(cfg)
	m := Split(cfg)

	if cfg.Target.Kind == TargetProfit {
		denom := 1 - m.Rate
		if denom <= 0 {
			return high, 0
		}
		price = (cfg.Target.Value + m.Flat) / denom
	} else {
		denom := 1 - m.Rate - cfg.Target.Value/100
		if denom <= 0 {
			return high, 0
		}
		price = m.Flat / denom
	}

	return nudgeUp(math.Max(price, math.Max(low, 0)), cfg)
}

// nudgeUp raises price from one ulp upwards, doubling the step, until the rounding
// error of the algebraic solve no longer leaves the result a hair below target. If
// that never happens within maxNudges steps the unmodified price is returned.
func nudgeUp(price float64, cfg Config) (float64, int) {
	candidate := price
	step := math.Nextafter(price, math.Inf(1)) - price
	for evals := 1; evals <= maxNudges; evals++ {
		if MeetsTarget(Evaluate(candidate, cfg), cfg.Target) {
			return candidate, evals
		}
		candidate += step
		step *= 2
	}
	return price, maxNudges
}

// RoundUp rounds price up to the next multiple of the policy's unit.
func RoundUp(price float64, r Rounding) float64 {
	unit := r.Unit()
	if unit == 0 {
		return price
	}
	return math.Ceil(price/unit) * unit
}

// MeetsTarget reports whether res satisfies t exactly: net profit at least the
// target amount, or net margin in percent at least the target margin.
func MeetsTarget(res Result, t Target) bool {
	if t.Kind == TargetProfit {
		return res.NetProfit >= t.Value
	}
	return res.NetMargin*100 >= t.Value
}
