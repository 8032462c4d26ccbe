// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/wneessen/addressgw/internal/http"
	"github.com/wneessen/addressgw/internal/logger"
)

// DefaultTimeout bounds a single authority request
const DefaultTimeout = time.Second * 6

// sensitiveParams are query parameters that are masked before a URL is logged
var sensitiveParams = []string{"key", "api_key", "app_id", "app_code", "apiKey"}

// Locator performs the request/response cycle that is shared by all authorities.
type Locator struct {
	http    *http.Client
	logger  *logger.Logger
	timeout time.Duration
}

// NewLocator returns a Locator that sends requests through client. A non-positive timeout
// selects DefaultTimeout.
func NewLocator(client *http.Client, log *logger.Logger, timeout time.Duration) *Locator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Locator{
		http:    client,
		logger:  log,
		timeout: timeout,
	}
}

// Locate queries the authority for the given coordinate and returns the normalized
// addresses. Every failure is returned as *UpstreamError.
func (l *Locator) Locate(ctx context.Context, authority Authority, coord Coordinate) ([]string, error) {
	log := l.logger.WithContext(ctx).With(slog.String("authority", authority.Name()))
	endpoint := authority.Endpoint()
	query := authority.Query(coord)
	log.Info("querying authority endpoint", slog.String("url", redactURL(endpoint, query)))

	var body json.RawMessage
	code, err := l.http.GetWithTimeout(ctx, endpoint, &body, query, nil, l.timeout)
	if err != nil {
		return nil, l.classify(log, authority.Name(), code, err)
	}

	addresses, err := authority.Normalize(body)
	if err != nil {
		var upErr *UpstreamError
		if !errors.As(err, &upErr) {
			upErr = &UpstreamError{Kind: KindStructure, Err: err}
		}
		upErr.Authority = authority.Name()
		return nil, upErr
	}
	if addresses == nil {
		addresses = []string{}
	}
	return addresses, nil
}

// classify maps a client error to an UpstreamError
func (l *Locator) classify(log *logger.Logger, name string, code int, err error) error {
	var statusErr *http.StatusError
	switch {
	case errors.As(err, &statusErr):
		if code < 500 {
			log.Error("possible API implementation flaw or change upstream",
				slog.Int("status", code), slog.String("body", statusErr.Body))
		}
		return &UpstreamError{Authority: name, Kind: KindStatus, Err: err}
	case errors.Is(err, http.ErrInvalidBody):
		return &UpstreamError{Authority: name, Kind: KindBody, Err: err}
	default:
		return &UpstreamError{Authority: name, Kind: KindTransport, Err: err}
	}
}

// redactURL renders endpoint with query and masks credentials
func redactURL(endpoint string, query url.Values) string {
	masked := make(url.Values, len(query))
	for k, v := range query {
		masked[k] = v
	}
	for _, key := range sensitiveParams {
		if masked.Has(key) {
			masked.Set(key, "REDACTED")
		}
	}
	if len(masked) == 0 {
		return endpoint
	}
	return endpoint + "?" + masked.Encode()
}
