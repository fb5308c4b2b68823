package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"openrtb-auction/internal/domain"
	"openrtb-auction/pkg/logger"
)

// RateService owns the current currency conversion snapshot. It can be
// seeded from a static file, refreshed from an HTTP feed on a cron schedule,
// and falls back to the redis-cached copy when the feed is unreachable.
type RateService struct {
	mu       sync.RWMutex
	current  *domain.CurrencyConversionData
	fetchURL string
	client   *http.Client
	cache    domain.RateCache
	cron     *cron.Cron
	log      logger.Logger
}

func NewRateService(fetchURL string, cache domain.RateCache, log logger.Logger) *RateService {
	if log == nil {
		log = logger.NewNop()
	}
	return &RateService{
		fetchURL: fetchURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		cron:     cron.New(),
		log:      log,
	}
}

// Current implements domain.RateSource. Nil means no rate data is loaded,
// in which case scoring degrades to raw prices.
func (s *RateService) Current() *domain.CurrencyConversionData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// LoadFromFile seeds the snapshot from a static JSON rate table.
func (s *RateService) LoadFromFile(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rate file: %w", err)
	}
	var data domain.CurrencyConversionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("parsing rate file: %w", err)
	}
	s.setCurrent(&data)
	s.log.Info("Loaded currency rates from file", "path", path, "data_as_of", data.DataAsOf)
	return nil
}

// Refresh fetches the latest snapshot from the configured feed. On success
// the snapshot is also written to the cache; on failure the last cached copy
// is used instead.
func (s *RateService) Refresh(ctx context.Context) error {
	if s.fetchURL == "" {
		return nil
	}

	data, err := s.fetch(ctx)
	if err != nil {
		s.log.Warn("Rate feed unreachable, falling back to cache", "url", s.fetchURL, "error", err)
		return s.loadFromCache(ctx, err)
	}

	s.setCurrent(data)
	s.log.Info("Refreshed currency rates", "data_as_of", data.DataAsOf, "generated_at", data.GeneratedAt)

	if s.cache != nil {
		if err := s.cache.StoreRates(ctx, data); err != nil {
			s.log.Warn("Failed to cache rate snapshot", "error", err)
		}
	}
	return nil
}

// StartRefreshing schedules periodic Refresh runs, e.g. "@every 1h".
func (s *RateService) StartRefreshing(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.log.Error("Scheduled rate refresh failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("Started rate refresh schedule", "spec", spec)
	return nil
}

func (s *RateService) Stop() {
	s.cron.Stop()
}

func (s *RateService) fetch(ctx context.Context) (*domain.CurrencyConversionData, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.fetchURL, nil)
	if err != nil {
		return nil, err
	}

	response, err := s.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", response.StatusCode)
	}

	var data domain.CurrencyConversionData
	if err := json.NewDecoder(response.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding rate feed: %w", err)
	}
	return &data, nil
}

func (s *RateService) loadFromCache(ctx context.Context, fetchErr error) error {
	if s.cache == nil {
		return fetchErr
	}
	cached, err := s.cache.LoadRates(ctx)
	if err != nil {
		return fmt.Errorf("loading cached rates after fetch failure: %w", err)
	}
	if cached == nil {
		return fetchErr
	}
	s.setCurrent(cached)
	s.log.Info("Using cached currency rates", "data_as_of", cached.DataAsOf)
	return nil
}

func (s *RateService) setCurrent(data *domain.CurrencyConversionData) {
	s.mu.Lock()
	s.current = data
	s.mu.Unlock()
}
