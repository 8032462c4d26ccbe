// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

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
	APIEndpoint = "https://api.geocode.earth/v1/reverse"
	name        = "geocode-earth"
)

type GeocodeEarth struct {
	apikey string
	lang   language.Tag
	logger *logger.Logger
}

type Response struct {
	Features []json.RawMessage `json:"features"`
}

type Feature struct {
	Properties *Properties `json:"properties"`
}

type Properties struct {
	Label *string `json:"label"`
}

func New(log *logger.Logger, lang language.Tag, apikey string) (*GeocodeEarth, error) {
	if apikey == "" {
		return nil, fmt.Errorf("geocode.earth: %w", geocode.ErrMissingCredentials)
	}
	return &GeocodeEarth{
		apikey: apikey,
		lang:   lang,
		logger: log,
	}, nil
}

func (g *GeocodeEarth) Name() string {
	return name
}

func (g *GeocodeEarth) Endpoint() string {
	return APIEndpoint
}

func (g *GeocodeEarth) Query(coord geocode.Coordinate) url.Values {
	query := url.Values{}
	query.Set("api_key", g.apikey)
	query.Set("point.lat", coord.Lat)
	query.Set("point.lon", coord.Lng)
	query.Set("layers", "address")
	if g.lang != language.Und {
		query.Set("lang", g.lang.String())
	}
	return query
}

func (g *GeocodeEarth) Normalize(body json.RawMessage) ([]string, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "failed to decode response: %w", err)
	}
	if response.Features == nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "response has no features list")
	}

	addresses := make([]string, 0, len(response.Features))
	for i, raw := range response.Features {
		var feature Feature
		if err := json.Unmarshal(raw, &feature); err != nil {
			g.logger.Warn("skipping unrecognized feature", slog.String("authority", name), slog.Int("feature", i),
				logger.Err(err))
			continue
		}
		if feature.Properties == nil || feature.Properties.Label == nil {
			continue
		}
		addresses = append(addresses, *feature.Properties.Label)
	}
	return addresses, nil
}
