package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"stockpile/internal/cache"
	apperrors "stockpile/internal/errors"
	"stockpile/internal/metrics"
)

const (
	directoryCacheKey  = "directory:random"
	directoryUserAgent = "Mozilla/5.0"
	maxDirectoryBody   = 1 << 20
)

// fallbackDirectory is served when the upstream directory fails and strict
// mode is off.
var fallbackDirectory = json.RawMessage(`{"count":1,"entries":[{"API":"JSONPlaceholder","Description":"Free fake API for testing and prototyping","Auth":"","HTTPS":true,"Cors":"yes","Link":"https://jsonplaceholder.typicode.com/","Category":"Development"}]}`)

// DirectoryService proxies the public-API directory.
type DirectoryService interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
}

// DirectoryOptions configures the upstream call.
type DirectoryOptions struct {
	URL      string
	Timeout  time.Duration
	Strict   bool
	CacheTTL time.Duration
}

type directoryService struct {
	opts    DirectoryOptions
	client  *http.Client
	cache   *cache.Client
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

// NewDirectoryService builds a DirectoryService. cache and m may be nil.
func NewDirectoryService(opts DirectoryOptions, c *cache.Client, m *metrics.Metrics, log logrus.FieldLogger) DirectoryService {
	return &directoryService{
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		cache:   c,
		metrics: m,
		log:     log,
	}
}

// Fetch returns the upstream body verbatim. Successful responses are cached
// for CacheTTL; failures yield the canned fallback, or ErrUpstreamUnavailable
// in strict mode.
func (s *directoryService) Fetch(ctx context.Context) (json.RawMessage, error) {
	if cached := s.cache.Get(ctx, directoryCacheKey); cached != nil {
		return cached, nil
	}

	body, err := s.call(ctx)
	if err != nil {
		if s.opts.Strict {
			return nil, err
		}
		s.log.WithError(err).Warn("directory upstream failed, serving fallback")
		s.metrics.ObserveFallback()
		return fallbackDirectory, nil
	}

	if s.opts.CacheTTL > 0 {
		s.cache.Set(ctx, directoryCacheKey, body, s.opts.CacheTTL)
	}
	return body, nil
}

func (s *directoryService) call(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("User-Agent", directoryUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream returned status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDirectoryBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: upstream returned invalid JSON", apperrors.ErrUpstreamUnavailable)
	}
	return body, nil
}
