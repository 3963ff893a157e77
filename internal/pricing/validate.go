package pricing

import (
	"errors"
	"fmt"
)

// Validate checks that a configuration is financially meaningful. Evaluate and Solve
// never call it; callers that accept user input do.
func Validate(cfg Config) error {
	var errs []error

	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseRounding(string(cfg.Rounding)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseTargetKind(string(cfg.Target.Kind)); err != nil {
		errs = append(errs, fmt.Errorf("target: %w", err))
	}

	amounts := []struct {
		name  string
		value float64
	}{
		{"manual_price", cfg.ManualPrice},
		{"unit_cost", cfg.UnitCost},
		{"packaging_cost", cfg.PackagingCost},
		{"handling_cost", cfg.HandlingCost},
		{"shipping_subsidy", cfg.ShippingSubsidy},
		{"extra_packaging", cfg.ExtraPackaging},
	}
	for _, a := range amounts {
		if a.value < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0", a.name))
		}
	}

	percents := []struct {
		name  string
		value float64
	}{
		{"return_rate", cfg.ReturnRate},
		{"admin_fee", cfg.AdminFee},
		{"transaction_fee", cfg.TransactionFee},
		{"bundle_discount", cfg.BundleDiscount},
		{"cashback", cfg.Cashback},
		{"affiliate_fee", cfg.AffiliateFee},
		{"tax_reserve", cfg.TaxReserve},
	}
	for _, p := range percents {
		if err := checkPercent(p.name, p.value); err != nil {
			errs = append(errs, err)
		}
	}

	charges := []struct {
		name   string
		charge Charge
	}{
		{"other_platform_fee", cfg.OtherPlatformFee},
		{"voucher", cfg.Voucher},
		{"ads", cfg.Ads},
		{"overhead", cfg.Overhead},
	}
	for _, c := range charges {
		if _, err := ParseChargeKind(string(c.charge.Kind)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		if c.charge.Kind == ChargePercent {
			if err := checkPercent(c.name, c.charge.Value); err != nil {
				errs = append(errs, err)
			}
		} else if c.charge.Value < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0", c.name))
		}
	}

	if cfg.Target.Kind == TargetMargin && cfg.Target.Value >= 100 {
		errs = append(errs, fmt.Errorf("target margin must be below 100"))
	}

	return errors.Join(errs...)
}

func checkPercent(name string, v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s must be between 0 and 100", name)
	}
	return nil
}
