package fetcher

import (
	"context"

	"launchpad-client/internal/sale"
)

// SaleFetcher retrieves the full sale snapshot from the launchpad API.
type SaleFetcher interface {
	FetchSale(ctx context.Context, saleAddress string) (sale.Config, error)
}
