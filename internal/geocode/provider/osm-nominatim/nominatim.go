// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package nominatim

import (
	"encoding/json"
	"log/slog"
	"net/url"

	"golang.org/x/text/language"

	"github.com/wneessen/addressgw/internal/geocode"
	"github.com/wneessen/addressgw/internal/logger"
)

const (
	APIReverseEndpoint = "https://nominatim.openstreetmap.org/reverse"
	name               = "osm-nominatim"

	// errNoResult is the error Nominatim reports for locations without an address
	errNoResult = "Unable to geocode"

	// building level
	zoomLevel = "18"
)

type Nominatim struct {
	lang   language.Tag
	logger *logger.Logger
}

type ReverseResult struct {
	DisplayName *string `json:"display_name"`
	Error       *string `json:"error"`
}

// New returns an authority for the public OpenStreetMap Nominatim service. Nominatim does
// not require credentials.
func New(log *logger.Logger, lang language.Tag) *Nominatim {
	return &Nominatim{
		lang:   lang,
		logger: log,
	}
}

func (n *Nominatim) Name() string {
	return name
}

func (n *Nominatim) Endpoint() string {
	return APIReverseEndpoint
}

func (n *Nominatim) Query(coord geocode.Coordinate) url.Values {
	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", coord.Lat)
	query.Set("lon", coord.Lng)
	query.Set("zoom", zoomLevel)
	query.Set("addressdetails", "0")
	if n.lang != language.Und {
		query.Set("accept-language", n.lang.String())
	}
	return query
}

func (n *Nominatim) Normalize(body json.RawMessage) ([]string, error) {
	var result ReverseResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "failed to decode response: %w", err)
	}
	if result.Error != nil {
		if *result.Error == errNoResult {
			return []string{}, nil
		}
		n.logger.Error("unexpected response error", slog.String("authority", name),
			slog.String("error", *result.Error))
		return nil, geocode.NewUpstreamError(geocode.KindStatus, "response error %q", *result.Error)
	}
	if result.DisplayName == nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "response has no display_name")
	}
	return []string{*result.DisplayName}, nil
}
