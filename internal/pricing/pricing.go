package pricing

import "math"

// Line is one labelled row of the display breakdown.
type Line struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
	IsDeduction bool    `json:"is_deduction"`
}

// Breakdown line keys, in display order.
const (
	LineSellingPrice = "selling_price"
	LineProductCost  = "product_cost"
	LinePlatformFees = "platform_fees"
	LinePromotion    = "promotion"
	LineMarketing    = "marketing"
	LineLogistics    = "logistics"
	LineOverheadTax  = "overhead_tax"
	LineNetProfit    = "net_profit"
)

// Result is the cost and profit breakdown of one unit sold at SellingPrice.
// It depends only on the price and the Config it was evaluated with.
type Result struct {
	SellingPrice float64 `json:"selling_price"`
	GrossRevenue float64 `json:"gross_revenue"`

	TotalProductCost    float64 `json:"total_product_cost"`
	TotalPlatformFees   float64 `json:"total_platform_fees"`
	TotalPromoCost      float64 `json:"total_promo_cost"`
	TotalMarketingCost  float64 `json:"total_marketing_cost"`
	TotalLogisticCost   float64 `json:"total_logistic_cost"`
	TotalOverheadAndTax float64 `json:"total_overhead_and_tax"`

	NetProfit      float64 `json:"net_profit"`
	NetMargin      float64 `json:"net_margin"`
	BreakEvenPrice float64 `json:"break_even_price"`

	// BreakEvenReachable is false when rate terms consume all revenue. A reachable
	// break-even of 0 means the flat costs are zero or negative.
	BreakEvenReachable bool `json:"break_even_reachable"`

	Breakdown []Line `json:"breakdown"`

	MaxVoucherPercent float64 `json:"max_voucher_percent"`
	MaxAdsPercent     float64 `json:"max_ads_percent"`
}

// CostModel is the affine form of the total cost: Flat + Rate*price.
type CostModel struct {
	Flat float64
	Rate float64
}

// Cost returns the total cost at price.
func (m CostModel) Cost(price float64) float64 {
	return m.Flat + m.Rate*price
}

// BreakEven returns the price at which profit is zero, or 0 when rate terms alone
// consume all revenue and no price can reach it.
func (m CostModel) BreakEven() float64 {
	if m.Rate >= 1 {
		return 0
	}
	be := m.Flat / (1 - m.Rate)
	if be < 0 {
		return 0
	}
	return be
}

// Reachable reports whether some price covers the costs, i.e. rate terms stay below 100%.
func (m CostModel) Reachable() bool {
	return m.Rate < 1
}

// ProductCost is the unit cost including the return reserve.
func ProductCost(cfg Config) float64 {
	base := cfg.UnitCost + cfg.PackagingCost + cfg.HandlingCost
	return base + base*(cfg.ReturnRate/100)
}

// LogisticCost is the flat logistics cost per order.
func LogisticCost(cfg Config) float64 {
	return cfg.ShippingSubsidy + cfg.ExtraPackaging
}

// Split decomposes the configuration into its flat and rate components.
func Split(cfg Config) CostModel {
	rate := (cfg.AdminFee+cfg.TransactionFee)/100 +
		cfg.OtherPlatformFee.Rate() +
		cfg.Voucher.Rate() +
		cfg.BundleDiscount/100 +
		cfg.Cashback/100 +
		cfg.Ads.Rate() +
		cfg.AffiliateFee/100 +
		cfg.Overhead.Rate() +
		cfg.TaxReserve/100

	flat := ProductCost(cfg) +
		cfg.OtherPlatformFee.FlatAmount() +
		cfg.Voucher.FlatAmount() +
		cfg.Ads.FlatAmount() +
		LogisticCost(cfg) +
		cfg.Overhead.FlatAmount()

	return CostModel{Flat: flat, Rate: rate}
}

// Evaluate computes the full breakdown of selling one unit at price.
func Evaluate(price float64, cfg Config) Result {
	productCost := ProductCost(cfg)

	platformFee := price*((cfg.AdminFee+cfg.TransactionFee)/100) + cfg.OtherPlatformFee.Amount(price)

	promoCost := cfg.Voucher.Amount(price) +
		price*(cfg.BundleDiscount/100) +
		price*(cfg.Cashback/100)

	marketingCost := cfg.Ads.Amount(price) + price*(cfg.AffiliateFee/100)

	logisticCost := LogisticCost(cfg)

	overheadAndTax := cfg.Overhead.Amount(price) + price*(cfg.TaxReserve/100)

	totalCost := productCost + platformFee + promoCost + marketingCost + logisticCost + overheadAndTax
	netProfit := price - totalCost
	netMargin := 0.0
	if price > 0 {
		netMargin = netProfit / price
	}

	maxVoucher, maxAds := headroom(price, netMargin, cfg)
	model := Split(cfg)

	return Result{
		SellingPrice:        price,
		GrossRevenue:        price,
		TotalProductCost:    productCost,
		TotalPlatformFees:   platformFee,
		TotalPromoCost:      promoCost,
		TotalMarketingCost:  marketingCost,
		TotalLogisticCost:   logisticCost,
		TotalOverheadAndTax: overheadAndTax,
		NetProfit:           netProfit,
		NetMargin:           netMargin,
		BreakEvenPrice:      model.BreakEven(),
		BreakEvenReachable:  model.Reachable(),
		Breakdown: []Line{
			{Key: LineSellingPrice, Label: "Selling price", Value: price},
			{Key: LineProductCost, Label: "Product cost & returns", Value: productCost, IsDeduction: true},
			{Key: LinePlatformFees, Label: "Platform fees", Value: platformFee, IsDeduction: true},
			{Key: LinePromotion, Label: "Promotion cost", Value: promoCost, IsDeduction: true},
			{Key: LineMarketing, Label: "Ads & marketing", Value: marketingCost, IsDeduction: true},
			{Key: LineLogistics, Label: "Logistics", Value: logisticCost, IsDeduction: true},
			{Key: LineOverheadTax, Label: "Overhead & tax", Value: overheadAndTax, IsDeduction: true},
			{Key: LineNetProfit, Label: "Net profit", Value: netProfit},
		},
		MaxVoucherPercent: maxVoucher,
		MaxAdsPercent:     maxAds,
	}
}

// headroom estimates how far the voucher and ads percentages could move before the
// target is violated. The estimate holds the evaluated price fixed.
func headroom(price, netMargin float64, cfg Config) (voucher, ads float64) {
	targetMargin := cfg.Target.Value
	if cfg.Target.Kind == TargetProfit {
		if price <= 0 {
			return 0, 0
		}
		targetMargin = cfg.Target.Value / price * 100
	}
	slack := netMargin*100 - targetMargin

	voucher = slack
	if cfg.Voucher.Kind != ChargeFlat {
		voucher += cfg.Voucher.Value
	}
	ads = slack
	if cfg.Ads.Kind != ChargeFlat {
		ads += cfg.Ads.Value
	}
	return round2(voucher), round2(ads)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Headroom is a safety figure in percent of price. Only positive values leave room.
type Headroom float64

// Safe reports whether any headroom remains.
func (h Headroom) Safe() bool { return h > 0 }

// VoucherHeadroom returns the maximum voucher percentage as a Headroom.
func (r Result) VoucherHeadroom() Headroom { return Headroom(r.MaxVoucherPercent) }

// AdsHeadroom returns the maximum ads percentage as a Headroom.
func (r Result) AdsHeadroom() Headroom { return Headroom(r.MaxAdsPercent) }

// Line returns the breakdown line with the given key.
func (r Result) Line(key string) (Line, bool) {
	for _, l := range r.Breakdown {
		if l.Key == key {
			return l, true
		}
	}
	return Line{}, false
}
