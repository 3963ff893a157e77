package pricing

import "fmt"

// Mode selects whether the caller supplies the selling price or a target.
type Mode string

const (
	ModeTargetProfit Mode = "target_profit"
	ModeGivenPrice   Mode = "given_price"
)

// ChargeKind tells whether a charge is a percentage of the selling price or a flat amount.
type ChargeKind string

const (
	ChargePercent ChargeKind = "percent"
	ChargeFlat    ChargeKind = "flat"
)

// TargetKind tells whether the target is a flat profit amount or a net margin percentage.
type TargetKind string

const (
	TargetProfit TargetKind = "profit"
	TargetMargin TargetKind = "margin"
)

// Rounding is the policy applied to a solved price. Every policy rounds up.
type Rounding string

const (
	RoundNone        Rounding = "none"
	RoundNearest500  Rounding = "nearest_500"
	RoundNearest1000 Rounding = "nearest_1000"
)

// Charge is a fee term that is either a rate of the selling price or a flat amount.
// Percent values are stored as entered, so 8 means 8%.
type Charge struct {
	Kind  ChargeKind `json:"kind"`
	Value float64    `json:"value"`
}

// Percent returns a percent-of-price charge.
func Percent(v float64) Charge { return Charge{Kind: ChargePercent, Value: v} }

// Flat returns a flat charge.
func Flat(v float64) Charge { return Charge{Kind: ChargeFlat, Value: v} }

// Amount evaluates the charge at the given price.
func (c Charge) Amount(price float64) float64 {
	if c.Kind == ChargeFlat {
		return c.Value
	}
	return price * (c.Value / 100)
}

// Rate is the price fraction contributed by the charge, 0 for flat charges.
func (c Charge) Rate() float64 {
	if c.Kind == ChargeFlat {
		return 0
	}
	return c.Value / 100
}

// FlatAmount is the price-independent part of the charge, 0 for percent charges.
func (c Charge) FlatAmount() float64 {
	if c.Kind == ChargeFlat {
		return c.Value
	}
	return 0
}

// Target is the profit goal used by the solver and by the headroom figures.
type Target struct {
	Kind  TargetKind `json:"kind"`
	Value float64    `json:"value"`
}

// Config is the full input of one calculation. Percent fields hold percentages as entered.
type Config struct {
	Mode        Mode    `json:"mode"`
	ManualPrice float64 `json:"manual_price"`

	ProductName string `json:"product_name"`

	UnitCost      float64 `json:"unit_cost"`
	PackagingCost float64 `json:"packaging_cost"`
	HandlingCost  float64 `json:"handling_cost"`
	ReturnRate    float64 `json:"return_rate"`

	AdminFee         float64 `json:"admin_fee"`
	TransactionFee   float64 `json:"transaction_fee"`
	OtherPlatformFee Charge  `json:"other_platform_fee"`

	Voucher        Charge  `json:"voucher"`
	BundleDiscount float64 `json:"bundle_discount"`
	Cashback       float64 `json:"cashback"`

	AdsLabel     string  `json:"ads_label"`
	Ads          Charge  `json:"ads"`
	AffiliateFee float64 `json:"affiliate_fee"`

	ShippingSubsidy float64 `json:"shipping_subsidy"`
	ExtraPackaging  float64 `json:"extra_packaging"`

	Overhead   Charge  `json:"overhead"`
	TaxReserve float64 `json:"tax_reserve"`

	Target   Target   `json:"target"`
	Rounding Rounding `json:"rounding"`
}

// Unit returns the rounding step in currency units, 0 when rounding is disabled.
func (r Rounding) Unit() float64 {
	switch r {
	case RoundNearest500:
		return 500
	case RoundNearest1000:
		return 1000
	default:
		return 0
	}
}

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeTargetProfit, ModeGivenPrice:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// ParseChargeKind validates a charge kind string.
func ParseChargeKind(s string) (ChargeKind, error) {
	switch k := ChargeKind(s); k {
	case ChargePercent, ChargeFlat:
		return k, nil
	}
	return "", fmt.Errorf("unknown charge kind %q", s)
}

// ParseTargetKind validates a target kind string.
func ParseTargetKind(s string) (TargetKind, error) {
	switch k := TargetKind(s); k {
	case TargetProfit, TargetMargin:
		return k, nil
	}
	return "", fmt.Errorf("unknown target kind %q", s)
}

// ParseRounding validates a rounding policy string.
func ParseRounding(s string) (Rounding, error) {
	switch r := Rounding(s); r {
	case RoundNone, RoundNearest500, RoundNearest1000:
		return r, nil
	}
	return "", fmt.Errorf("unknown rounding %q", s)
}
