// Package collectors fetches external search signals for the preflight
// builder. The default implementation is a deterministic mock; a live
// SERP backend plugs in behind the same interface.
package collectors

import (
	"context"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

// Collector produces SERP signals for a query in a locale.
type Collector interface {
	SerpSnapshot(ctx context.Context, query, locale string) (*models.SerpSignal, error)
}
