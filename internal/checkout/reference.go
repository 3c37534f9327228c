package checkout

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/internal/api"
	"storefront/internal/models"
)

const referencePageSize = 15

var now = func() time.Time { return time.Now().UTC() }

// ReferenceData feeds the checkout screen pickers
type ReferenceData struct {
	Products  []models.Product `json:"products"`
	Sections  []models.Section `json:"sections"`
	Addresses []models.Address `json:"addresses"`
}

// LoadReferenceData fetches products, sections and addresses in parallel.
// The first failure cancels the other requests.
func (s *Service) LoadReferenceData(ctx context.Context) (*ReferenceData, error) {
	var data ReferenceData
	params := api.ListParams{Per: referencePageSize}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.backend.ListProducts(ctx, params)
		if err != nil {
			return err
		}
		data.Products = page.Data
		return nil
	})
	g.Go(func() error {
		page, err := s.backend.ListSections(ctx, params)
		if err != nil {
			return err
		}
		data.Sections = page.Data
		return nil
	})
	g.Go(func() error {
		page, err := s.backend.ListAddresses(ctx, params)
		if err != nil {
			return err
		}
		data.Addresses = page.Data
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("reference_data_failed", "Failed to load checkout reference data", "", err, nil)
		return nil, fmt.Errorf("failed to load reference data: %w", err)
	}
	return &data, nil
}
