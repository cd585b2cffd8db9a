package sources

import (
	"context"
	"fmt"
	"time"

	"SilverFetch/internal/domain/models"
	"SilverFetch/internal/service/ratelimit"
	"SilverFetch/pkg/config"
	phttp "SilverFetch/pkg/http"
	"SilverFetch/pkg/logger"
)

// Some retail price sites answer differently to non-browser agents.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_6) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"

// ScrapeAdapter fetches a price page and extracts the spot price with the
// shared regex ladder. It backs sources that publish HTML, not an API.
type ScrapeAdapter struct {
	name    string
	url     string
	client  *phttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

func NewScrapeAdapter(cfg config.SourceConfig, limiter *ratelimit.Limiter, log *logger.Logger) *ScrapeAdapter {
	return &ScrapeAdapter{
		name:    cfg.Name,
		url:     cfg.URL,
		client:  phttp.NewClient(phttp.WithTimeout(cfg.Timeout)),
		limiter: limiter,
		log:     log,
	}
}

func (a *ScrapeAdapter) Name() string { return a.name }

func (a *ScrapeAdapter) Fetch(ctx context.Context) (models.QuoteObservation, error) {
	if !a.limiter.Allow(a.name, fetchBurst, fetchRefillPerSec) {
		return models.QuoteObservation{}, fmt.Errorf("%s: %w", a.name, ErrThrottled)
	}

	var body []byte
	err := a.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method:  phttp.MethodGet,
		URL:     a.url,
		Headers: map[string]string{"User-Agent": browserUserAgent},
	}, &body)
	if err != nil {
		return models.QuoteObservation{}, fmt.Errorf("%s: %w", a.name, err)
	}

	price, ok := ExtractPrice(string(body))
	if !ok {
		return models.QuoteObservation{}, fmt.Errorf("%s: no price found in page", a.name)
	}

	a.log.Debug("scraped spot price",
		logger.String("source", a.name),
		logger.Float64("price", price))
	return models.QuoteObservation{
		Source:     a.name,
		Price:      price,
		Currency:   "USD",
		ObservedAt: time.Now().UTC(),
	}, nil
}
