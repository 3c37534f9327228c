package draft

import (
	"github.com/shopspring/decimal"

	"storefront/internal/config"
	"storefront/internal/models"
)

// Keys under meta.charges expected by the backend
const (
	ChargeServiceFee    = "AppInApp"
	ChargeDelivery      = "Delivery"
	ChargeOutOfPremises = "OutOfPremises"
	ChargeTip           = "Tip"
)

// Pricing holds the rates applied at checkout
type Pricing struct {
	ServiceFeeRate   decimal.Decimal
	DeliveryFee      decimal.Decimal
	OutOfPremisesFee decimal.Decimal
}

// DefaultPricing is 2% service fee plus flat 25 delivery and out-of-premises fees
func DefaultPricing() Pricing {
	return Pricing{
		ServiceFeeRate:   decimal.NewFromFloat(0.02),
		DeliveryFee:      decimal.NewFromInt(25),
		OutOfPremisesFee: decimal.NewFromInt(25),
	}
}

// PricingFromConfig converts configured rates
func PricingFromConfig(cfg config.PricingConfig) Pricing {
	return Pricing{
		ServiceFeeRate:   decimal.NewFromFloat(cfg.ServiceFeeRate),
		DeliveryFee:      decimal.NewFromFloat(cfg.DeliveryFee),
		OutOfPremisesFee: decimal.NewFromFloat(cfg.OutOfPremisesFee),
	}
}

// Charges is the breakdown of an order total. Amounts are rounded to cents,
// half away from zero.
type Charges struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	ServiceFee    decimal.Decimal `json:"serviceFee"`
	Delivery      decimal.Decimal `json:"delivery"`
	OutOfPremises decimal.Decimal `json:"outOfPremises"`
	Tip           decimal.Decimal `json:"tip"`
	Total         decimal.Decimal `json:"total"`
}

// ComputeCharges derives fees for a vendor subtotal
func ComputeCharges(subtotal decimal.Decimal, d Draft, p Pricing) Charges {
	c := Charges{
		Subtotal:      round(subtotal),
		ServiceFee:    round(subtotal.Mul(p.ServiceFeeRate)),
		Delivery:      decimal.Zero,
		OutOfPremises: decimal.Zero,
		Tip:           round(d.Tip),
	}

	if d.Delivery == models.DeliveryDelivery {
		c.Delivery = round(p.DeliveryFee)
	}
	if d.OutOfPremises() {
		c.OutOfPremises = round(p.OutOfPremisesFee)
	}

	c.Total = c.Subtotal.Add(c.ServiceFee).Add(c.Delivery).Add(c.OutOfPremises).Add(c.Tip)
	return c
}

// Meta is the meta.charges object sent with the order. Zero flat fees are omitted.
func (c Charges) Meta() map[string]interface{} {
	meta := map[string]interface{}{
		ChargeServiceFee: c.ServiceFee.InexactFloat64(),
	}
	if !c.Delivery.IsZero() {
		meta[ChargeDelivery] = c.Delivery.InexactFloat64()
	}
	if !c.OutOfPremises.IsZero() {
		meta[ChargeOutOfPremises] = c.OutOfPremises.InexactFloat64()
	}
	if !c.Tip.IsZero() {
		meta[ChargeTip] = c.Tip.InexactFloat64()
	}
	return meta
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
