package sources

import (
	"errors"
	"strings"

	"SilverFetch/internal/domain/repository"
	"SilverFetch/internal/service/ratelimit"
	"SilverFetch/pkg/config"
	"SilverFetch/pkg/logger"
)

// Per-source fetch budget. The refresh loop needs one fetch per cycle; the
// burst absorbs a restart or an overlapping manual probe without letting a
// tight loop hammer a scraped site.
const (
	fetchBurst        = 3.0
	fetchRefillPerSec = 0.2
)

// ErrThrottled is returned when a source's fetch budget is exhausted.
var ErrThrottled = errors.New("source fetch throttled")

// Build constructs one adapter per configured source. Sources whose URL
// points at a JSON endpoint get the API adapter; everything else is scraped.
// All adapters share one rate limiter keyed by source name.
func Build(cfgs []config.SourceConfig, log *logger.Logger) []repository.SourceAdapter {
	limiter := ratelimit.New()
	adapters := make([]repository.SourceAdapter, 0, len(cfgs))
	for _, cfg := range cfgs {
		if strings.Contains(cfg.URL, "api.") {
			adapters = append(adapters, NewAPIAdapter(cfg, limiter, log))
			continue
		}
		adapters = append(adapters, NewScrapeAdapter(cfg, limiter, log))
	}
	return adapters
}
