package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-6

func forwardConfig() Config {
	cfg := DefaultConfig()
	cfg.Mode = ModeGivenPrice
	cfg.ManualPrice = 100000
	return cfg
}

// mixedConfig exercises every term with a mix of flat and percent charges.
func mixedConfig() Config {
	return Config{
		Mode:             ModeTargetProfit,
		UnitCost:         40000,
		PackagingCost:    1500,
		HandlingCost:     500,
		ReturnRate:       5,
		AdminFee:         6,
		TransactionFee:   3.5,
		OtherPlatformFee: Flat(1250),
		Voucher:          Percent(4),
		BundleDiscount:   2,
		Cashback:         1.5,
		Ads:              Flat(3000),
		AffiliateFee:     5,
		ShippingSubsidy:  2000,
		ExtraPackaging:   750,
		Overhead:         Percent(3),
		TaxReserve:       0.5,
		Target:           Target{Kind: TargetProfit, Value: 15000},
		Rounding:         RoundNearest1000,
	}
}

func TestEvaluate_ForwardScenario(t *testing.T) {
	res := Evaluate(100000, forwardConfig())

	assert.InDelta(t, 100000, res.SellingPrice, eps)
	assert.InDelta(t, 100000, res.GrossRevenue, eps)
	assert.InDelta(t, 52000, res.TotalProductCost, eps)
	assert.InDelta(t, 10500, res.TotalPlatformFees, eps)
	assert.InDelta(t, 0, res.TotalPromoCost, eps)
	assert.InDelta(t, 8000, res.TotalMarketingCost, eps)
	assert.InDelta(t, 0, res.TotalLogisticCost, eps)
	assert.InDelta(t, 0, res.TotalOverheadAndTax, eps)
	assert.InDelta(t, 29500, res.NetProfit, eps)
	assert.InDelta(t, 0.295, res.NetMargin, 1e-12)
	assert.InDelta(t, 52000/(1-0.185), res.BreakEvenPrice, eps)
	assert.Equal(t, 9.5, res.MaxVoucherPercent)
	assert.Equal(t, 17.5, res.MaxAdsPercent)
}

func TestEvaluate_BreakdownOrder(t *testing.T) {
	res := Evaluate(100000, forwardConfig())

	keys := make([]string, 0, len(res.Breakdown))
	deductions := make([]bool, 0, len(res.Breakdown))
	for _, l := range res.Breakdown {
		keys = append(keys, l.Key)
		deductions = append(deductions, l.IsDeduction)
	}

	assert.Equal(t, []string{
		LineSellingPrice,
		LineProductCost,
		LinePlatformFees,
		LinePromotion,
		LineMarketing,
		LineLogistics,
		LineOverheadTax,
		LineNetProfit,
	}, keys)
	assert.Equal(t, []bool{false, true, true, true, true, true, true, false}, deductions)

	first, last := res.Breakdown[0], res.Breakdown[len(res.Breakdown)-1]
	assert.Equal(t, res.SellingPrice, first.Value)
	assert.Equal(t, res.NetProfit, last.Value)

	line, ok := res.Line(LineMarketing)
	require.True(t, ok)
	assert.Equal(t, res.TotalMarketingCost, line.Value)
}

func TestEvaluate_ProfitIsAffineInPrice(t *testing.T) {
	cfg := mixedConfig()
	m := Split(cfg)

	prices := [][2]float64{{50000, 120000}, {0, 75000}, {99999, 250000}, {-1000, 1000}}
	for _, p := range prices {
		a := Evaluate(p[0], cfg)
		b := Evaluate(p[1], cfg)
		slope := (b.NetProfit - a.NetProfit) / (p[1] - p[0])
		assert.InDelta(t, 1-m.Rate, slope, 1e-9, "prices %v", p)
	}
}

func TestEvaluate_ZeroPrice(t *testing.T) {
	cfg := mixedConfig()

	res := Evaluate(0, cfg)

	assert.Equal(t, 0.0, res.NetMargin)
	assert.InDelta(t, -Split(cfg).Flat, res.NetProfit, eps)
	// 42000 * 1.05 + 1250 + 3000 + 2000 + 750
	assert.InDelta(t, -(44100 + 1250 + 3000 + 2750.0), res.NetProfit, eps)
	assert.Equal(t, 0.0, res.MaxVoucherPercent, "profit target has no margin at price 0")
	assert.Equal(t, 0.0, res.MaxAdsPercent)
}

func TestEvaluate_BreakEvenHasZeroProfit(t *testing.T) {
	for name, cfg := range map[string]Config{
		"defaults": DefaultConfig(),
		"mixed":    mixedConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			res := Evaluate(0, cfg)
			require.True(t, res.BreakEvenReachable)

			atBreakEven := Evaluate(res.BreakEvenPrice, cfg)
			assert.InDelta(t, 0, atBreakEven.NetProfit, eps)
		})
	}
}

func TestEvaluate_BreakEvenUnreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminFee = 60
	cfg.TransactionFee = 40

	res := Evaluate(100000, cfg)

	assert.Equal(t, 0.0, res.BreakEvenPrice)
	assert.False(t, res.BreakEvenReachable)
	assert.Less(t, res.NetProfit, 0.0)
}

func TestEvaluate_BreakEvenAtZeroWithoutFlatCosts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UnitCost = 0
	cfg.PackagingCost = 0

	res := Evaluate(50000, cfg)

	assert.Equal(t, 0.0, res.BreakEvenPrice)
	assert.True(t, res.BreakEvenReachable, "rates below 100 percent leave every positive price profitable")
	assert.Greater(t, res.NetProfit, 0.0)
	assert.True(t, Split(cfg).Reachable())
}

func TestEvaluate_NegativeInputsPropagate(t *testing.T) {
	cfg := forwardConfig()
	cfg.AdminFee = -10

	res := Evaluate(100000, cfg)

	assert.InDelta(t, -6000, res.TotalPlatformFees, eps)
	assert.InDelta(t, 46000, res.NetProfit, eps)
}

func TestEvaluate_Headroom(t *testing.T) {
	t.Run("flat voucher counts as zero percent", func(t *testing.T) {
		cfg := forwardConfig()
		cfg.Voucher = Flat(1000)

		res := Evaluate(100000, cfg)

		assert.Equal(t, 8.5, res.MaxVoucherPercent)
		assert.Equal(t, 16.5, res.MaxAdsPercent)
	})

	t.Run("profit target converted at evaluated price", func(t *testing.T) {
		cfg := forwardConfig()
		cfg.Target = Target{Kind: TargetProfit, Value: 10000}

		res := Evaluate(100000, cfg)

		assert.Equal(t, 19.5, res.MaxVoucherPercent)
		assert.Equal(t, 27.5, res.MaxAdsPercent)
	})

	t.Run("exhausted headroom is not safe", func(t *testing.T) {
		cfg := forwardConfig()
		cfg.Target = Target{Kind: TargetMargin, Value: 40}
		cfg.Ads = Flat(5000)

		res := Evaluate(100000, cfg)

		assert.Equal(t, -7.5, res.MaxAdsPercent)
		assert.False(t, res.AdsHeadroom().Safe())
		assert.False(t, res.VoucherHeadroom().Safe())
	})

	t.Run("rounded to two decimals", func(t *testing.T) {
		res := Evaluate(77777, forwardConfig())

		assert.Equal(t, math.Round(res.MaxAdsPercent*100)/100, res.MaxAdsPercent)
		assert.True(t, res.AdsHeadroom().Safe())
	})
}

func TestSplit(t *testing.T) {
	m := Split(mixedConfig())

	assert.InDelta(t, 0.06+0.035+0.04+0.02+0.015+0.05+0.03+0.005, m.Rate, 1e-12)
	assert.InDelta(t, 44100+1250+3000+2750.0, m.Flat, eps)
	assert.InDelta(t, m.Flat+m.Rate*1000, m.Cost(1000), eps)
}

func TestChargeAmount(t *testing.T) {
	assert.InDelta(t, 800, Percent(8).Amount(10000), eps)
	assert.Equal(t, 1500.0, Flat(1500).Amount(10000))
	assert.Equal(t, 0.0, Flat(1500).Rate())
	assert.Equal(t, 0.0, Percent(8).FlatAmount())
}
