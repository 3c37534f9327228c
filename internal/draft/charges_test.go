package draft

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeCharges(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		draft    Draft
		want     string
	}{
		{"delivery adds flat fee", "1000", Draft{Delivery: models.DeliveryDelivery}, "1045"},
		{"dine-in is subtotal plus service fee", "1000", Draft{Delivery: models.DeliveryDinein}, "1020"},
		{"takeaway on premises", "500", Draft{Delivery: models.DeliveryTakeaway, Origin: models.OriginIn}, "510"},
		{"takeaway from outside", "500", Draft{Delivery: models.DeliveryTakeaway, Origin: models.OriginOut}, "535"},
		{"out flag ignored outside takeaway", "500", Draft{Delivery: models.DeliveryDinein, Origin: models.OriginOut}, "510"},
		{"tip is added", "100", Draft{Delivery: models.DeliveryDinein, Tip: decimal.NewFromInt(5)}, "107"},
		{"service fee rounds half away from zero", "0.25", Draft{Delivery: models.DeliveryDinein}, "0.26"},
		{"empty cart", "0", Draft{Delivery: models.DeliveryDinein}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ComputeCharges(dec(tt.subtotal), tt.draft, DefaultPricing())
			assert.True(t, c.Total.Equal(dec(tt.want)), "total = %s, want %s", c.Total, tt.want)
		})
	}
}

func TestComputeCharges_Breakdown(t *testing.T) {
	c := ComputeCharges(dec("1000"), Draft{Delivery: models.DeliveryDelivery}, DefaultPricing())

	assert.True(t, c.ServiceFee.Equal(dec("20")))
	assert.True(t, c.Delivery.Equal(dec("25")))
	assert.True(t, c.OutOfPremises.IsZero())

	meta := c.Meta()
	assert.Equal(t, 20.0, meta[ChargeServiceFee])
	assert.Equal(t, 25.0, meta[ChargeDelivery])
	assert.NotContains(t, meta, ChargeOutOfPremises)
	assert.NotContains(t, meta, ChargeTip)
}

func TestComputeCharges_MatchesOrderComputedTotal(t *testing.T) {
	d := Draft{Delivery: models.DeliveryTakeaway, Origin: models.OriginOut}
	c := ComputeCharges(dec("240"), d, DefaultPricing())

	order := models.Order{
		Items: []models.OrderItem{{ProductID: "P1", Price: dec("120"), Quantity: 2}},
		Meta:  map[string]interface{}{"charges": c.Meta()},
	}
	assert.True(t, order.ComputedTotal().Equal(c.Total), "%s vs %s", order.ComputedTotal(), c.Total)
}

func TestPricingFromConfig(t *testing.T) {
	p := PricingFromConfig(config.PricingConfig{ServiceFeeRate: 0.05, DeliveryFee: 40, OutOfPremisesFee: 10})

	c := ComputeCharges(dec("100"), Draft{Delivery: models.DeliveryDelivery}, p)
	assert.True(t, c.Total.Equal(dec("145")))
}

func TestSlotsForDay(t *testing.T) {
	day := time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

	slots := SlotsForDay(day)
	require.Len(t, slots, 12)

	assert.Equal(t, "6:00 - 7:00", slots[0].Name)
	assert.Equal(t, "17:00 - 18:00", slots[11].Name)
	assert.Equal(t, "2026-03-14", slots[0].Day)
	assert.Equal(t, time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC), slots[0].Start)
	assert.Equal(t, time.Hour, slots[5].End.Sub(slots[5].Start))
}
