// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package googlemaps

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"golang.org/x/text/language"

	"github.com/wneessen/addressgw/internal/geocode"
	"github.com/wneessen/addressgw/internal/logger"
)

const (
	APIEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"
	name        = "googlemaps"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

type GoogleMaps struct {
	apikey string
	lang   language.Tag
	logger *logger.Logger
}

// New returns a Google Maps authority for the given API key
func New(log *logger.Logger, lang language.Tag, apikey string) (*GoogleMaps, error) {
	if apikey == "" {
		return nil, fmt.Errorf("google maps: %w", geocode.ErrMissingCredentials)
	}
	return &GoogleMaps{
		apikey: apikey,
		lang:   lang,
		logger: log,
	}, nil
}

func (g *GoogleMaps) Name() string {
	return name
}

func (g *GoogleMaps) Endpoint() string {
	return APIEndpoint
}

func (g *GoogleMaps) Query(coord geocode.Coordinate) url.Values {
	query := url.Values{}
	query.Set("location_type", "ROOFTOP")
	query.Set("result_type", "street_address")
	query.Set("key", g.apikey)
	query.Set("latlng", coord.Lat+","+coord.Lng)
	if g.lang != language.Und {
		query.Set("language", g.lang.String())
	}
	return query
}

// Normalize extracts the formatted addresses of an OK response. The top level is decoded
// with exact key matching, results are decoded one by one so a single odd entry does not
// break the whole response.
func (g *GoogleMaps) Normalize(body json.RawMessage) ([]string, error) {
	response, err := geocode.DecodeObject(body)
	if err != nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "failed to decode response: %w", err)
	}
	var status string
	if ok, err := response.Field("status", &status); err != nil || !ok {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "response has no status field")
	}

	switch status {
	case statusZeroResults:
		return []string{}, nil
	case statusOK:
	default:
		g.logger.Error("unexpected response status", slog.String("authority", name),
			slog.String("status", status), slog.String("error_message", string(response["error_message"])))
		return nil, geocode.NewUpstreamError(geocode.KindStatus, "response status %q", status)
	}

	var results []json.RawMessage
	if ok, err := response.Field("results", &results); err != nil || !ok {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "response has no results list")
	}
	addresses := make([]string, 0, len(results))
	for i, raw := range results {
		result, err := geocode.DecodeObject(raw)
		if err != nil {
			return nil, geocode.NewUpstreamError(geocode.KindStructure, "result %d is not an object", i)
		}
		var address string
		ok, err := result.Field("formatted_address", &address)
		if err != nil {
			g.logger.Warn("skipping result with unrecognized formatted_address", slog.String("authority", name),
				slog.Int("result", i), logger.Err(err))
			continue
		}
		if !ok {
			continue
		}
		addresses = append(addresses, address)
	}
	return addresses, nil
}
