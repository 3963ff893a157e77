package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

// overrides collects config edits in command-line order. They are applied after the
// base config (defaults or -config file) is loaded.
type overrides []func(*pricing.Config)

func (o *overrides) float(fs *flag.FlagSet, name, usage string, set func(*pricing.Config, float64)) {
	fs.Func(name, usage, func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*o = append(*o, func(c *pricing.Config) { set(c, v) })
		return nil
	})
}

func (o *overrides) text(fs *flag.FlagSet, name, usage string, set func(*pricing.Config, string)) {
	fs.Func(name, usage, func(s string) error {
		*o = append(*o, func(c *pricing.Config) { set(c, s) })
		return nil
	})
}

// charge accepts "8%" for a percent of revenue and "3000" for a flat amount per unit.
func (o *overrides) charge(fs *flag.FlagSet, name, usage string, set func(*pricing.Config, pricing.Charge)) {
	fs.Func(name, usage+` ("8%" or a flat amount)`, func(s string) error {
		c, err := parseCharge(s)
		if err != nil {
			return err
		}
		*o = append(*o, func(cfg *pricing.Config) { set(cfg, c) })
		return nil
	})
}

func parseCharge(s string) (pricing.Charge, error) {
	s = strings.TrimSpace(s)
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return pricing.Charge{}, fmt.Errorf("not a percentage: %q", s)
		}
		return pricing.Percent(v), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return pricing.Charge{}, fmt.Errorf("not an amount: %q", s)
	}
	return pricing.Flat(v), nil
}

func adsPreset(name string) (pricing.AdsPreset, error) {
	presets := pricing.AdsPresets()
	switch strings.ToLower(name) {
	case "low":
		return presets[0], nil
	case "normal":
		return presets[1], nil
	case "aggressive":
		return presets[2], nil
	}
	return pricing.AdsPreset{}, fmt.Errorf("unknown ads preset %q (low, normal, aggressive)", name)
}

func registerConfigFlags(fs *flag.FlagSet, o *overrides) {
	o.text(fs, "mode", "target_profit or given_price", func(c *pricing.Config, s string) { c.Mode = pricing.Mode(s) })
	o.float(fs, "price", "manual selling price, implies -mode given_price", func(c *pricing.Config, v float64) {
		c.Mode = pricing.ModeGivenPrice
		c.ManualPrice = v
	})
	o.text(fs, "product", "product name", func(c *pricing.Config, s string) { c.ProductName = s })

	o.float(fs, "unit-cost", "cost of goods per unit", func(c *pricing.Config, v float64) { c.UnitCost = v })
	o.float(fs, "packaging", "packaging cost per unit", func(c *pricing.Config, v float64) { c.PackagingCost = v })
	o.float(fs, "handling", "handling cost per unit", func(c *pricing.Config, v float64) { c.HandlingCost = v })
	o.float(fs, "return-rate", "return/damage rate in percent", func(c *pricing.Config, v float64) { c.ReturnRate = v })

	o.float(fs, "admin-fee", "admin fee in percent", func(c *pricing.Config, v float64) { c.AdminFee = v })
	o.float(fs, "transaction-fee", "transaction fee in percent", func(c *pricing.Config, v float64) { c.TransactionFee = v })
	o.charge(fs, "other-fee", "other platform fee", func(c *pricing.Config, ch pricing.Charge) { c.OtherPlatformFee = ch })

	o.charge(fs, "voucher", "seller voucher", func(c *pricing.Config, ch pricing.Charge) { c.Voucher = ch })
	o.float(fs, "bundle-discount", "bundle discount in percent", func(c *pricing.Config, v float64) { c.BundleDiscount = v })
	o.float(fs, "cashback", "cashback in percent", func(c *pricing.Config, v float64) { c.Cashback = v })

	o.text(fs, "ads-label", "ads channel label", func(c *pricing.Config, s string) { c.AdsLabel = s })
	o.charge(fs, "ads", "ads budget", func(c *pricing.Config, ch pricing.Charge) { c.Ads = ch })
	fs.Func("ads-preset", "ads budget preset: low, normal or aggressive", func(s string) error {
		p, err := adsPreset(s)
		if err != nil {
			return err
		}
		*o = append(*o, func(c *pricing.Config) { *c = c.WithAdsPreset(p) })
		return nil
	})
	o.float(fs, "affiliate-fee", "affiliate fee in percent", func(c *pricing.Config, v float64) { c.AffiliateFee = v })

	o.float(fs, "shipping-subsidy", "shipping subsidy per unit", func(c *pricing.Config, v float64) { c.ShippingSubsidy = v })
	o.float(fs, "extra-packaging", "extra packaging per unit", func(c *pricing.Config, v float64) { c.ExtraPackaging = v })

	o.charge(fs, "overhead", "overhead", func(c *pricing.Config, ch pricing.Charge) { c.Overhead = ch })
	o.float(fs, "tax-reserve", "tax reserve in percent", func(c *pricing.Config, v float64) { c.TaxReserve = v })

	o.float(fs, "target-margin", "target net margin in percent", func(c *pricing.Config, v float64) {
		c.Target = pricing.Target{Kind: pricing.TargetMargin, Value: v}
	})
	o.float(fs, "target-profit", "target net profit per unit", func(c *pricing.Config, v float64) {
		c.Target = pricing.Target{Kind: pricing.TargetProfit, Value: v}
	})
	o.text(fs, "rounding", "none, nearest_500 or nearest_1000", func(c *pricing.Config, s string) { c.Rounding = pricing.Rounding(s) })
}

// loadConfigFile reads a JSON config on top of the defaults, so partial files work.
func loadConfigFile(path string) (pricing.Config, error) {
	cfg := pricing.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return cfg, nil
}
