package features

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/models"
)

type cartTestContext struct {
	store *cart.Store
}

func (c *cartTestContext) reset() {
	c.store = cart.NewStore()
}

func (c *cartTestContext) anEmptyCart() error {
	c.reset()
	return nil
}

func (c *cartTestContext) iAddProductPricedFromVendor(productID string, price int, vendorID string) error {
	c.store.AddItem(models.Product{
		ID:       productID,
		VendorID: vendorID,
		Name:     productID,
		Price:    decimal.NewFromInt(int64(price)),
	}, nil)
	return nil
}

func (c *cartTestContext) iSetTheQuantityOfProductOfVendorTo(productID, vendorID string, quantity int) error {
	ok, err := c.store.UpdateItem(cart.Key{VendorID: vendorID, ProductID: productID}, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("product %s of vendor %s is not in the cart", productID, vendorID)
	}
	return nil
}

func (c *cartTestContext) iRemoveProductOfVendor(productID, vendorID string) error {
	c.store.RemoveItem(cart.Key{VendorID: vendorID, ProductID: productID})
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.store.Clear()
	return nil
}

func (c *cartTestContext) vendorHasLines(vendorID string, n int) error {
	if got := len(c.store.Lines(vendorID)); got != n {
		return fmt.Errorf("vendor %s has %d lines, want %d", vendorID, got, n)
	}
	return nil
}

func (c *cartTestContext) productOfVendorHasQuantity(productID, vendorID string, quantity int) error {
	line, ok := c.store.Line(cart.Key{VendorID: vendorID, ProductID: productID})
	if !ok {
		return fmt.Errorf("product %s of vendor %s is not in the cart", productID, vendorID)
	}
	if line.Quantity != quantity {
		return fmt.Errorf("quantity = %d, want %d", line.Quantity, quantity)
	}
	return nil
}

func (c *cartTestContext) theTotalForVendorIs(vendorID string, total int) error {
	if got := c.store.Total(vendorID); !got.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("total for %s = %s, want %d", vendorID, got, total)
	}
	return nil
}

func (c *cartTestContext) theGrandTotalIs(total int) error {
	if got := c.store.GrandTotal(); !got.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("grand total = %s, want %d", got, total)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^I add product "([^"]*)" priced (\d+) from vendor "([^"]*)"$`, tc.iAddProductPricedFromVendor)
	ctx.Step(`^I set the quantity of product "([^"]*)" of vendor "([^"]*)" to (\d+)$`, tc.iSetTheQuantityOfProductOfVendorTo)
	ctx.Step(`^I remove product "([^"]*)" of vendor "([^"]*)"$`, tc.iRemoveProductOfVendor)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)

	ctx.Step(`^vendor "([^"]*)" has (\d+) lines?$`, tc.vendorHasLines)
	ctx.Step(`^product "([^"]*)" of vendor "([^"]*)" has quantity (\d+)$`, tc.productOfVendorHasQuantity)
	ctx.Step(`^the total for vendor "([^"]*)" is (\d+)$`, tc.theTotalForVendorIs)
	ctx.Step(`^the grand total is (\d+)$`, tc.theGrandTotalIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
