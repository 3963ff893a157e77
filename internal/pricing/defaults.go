package pricing

// AdsPreset is a quick-pick advertising budget expressed in percent of revenue.
type AdsPreset struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// AdsPresets returns the quick-pick ads budgets.
func AdsPresets() []AdsPreset {
	return []AdsPreset{
		{Label: "Low Ads (3%)", Value: 3},
		{Label: "Normal Ads (8%)", Value: 8},
		{Label: "Aggressive (15%)", Value: 15},
	}
}

// DefaultConfig returns the configuration a new product profile starts from.
func DefaultConfig() Config {
	return Config{
		Mode:        ModeTargetProfit,
		ManualPrice: 100000,

		ProductName: "Produk Baru",

		UnitCost:      50000,
		PackagingCost: 2000,

		AdminFee:         6.5,
		TransactionFee:   4.0,
		OtherPlatformFee: Percent(0),

		Voucher: Percent(0),

		AdsLabel: "Shopee Ads",
		Ads:      Percent(8),

		Overhead: Percent(0),

		Target:   Target{Kind: TargetMargin, Value: 20},
		Rounding: RoundNearest500,
	}
}

// WithAdsPreset returns cfg with the ads budget set to the preset, as a percent of revenue.
func (cfg Config) WithAdsPreset(p AdsPreset) Config {
	cfg.Ads = Percent(p.Value)
	return cfg
}
