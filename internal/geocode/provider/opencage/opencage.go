// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package opencage

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
	APIEndpoint = "https://api.opencagedata.com/geocode/v1/json"
	name        = "opencage"

	statusOK = 200
)

type OpenCage struct {
	apikey string
	lang   language.Tag
	logger *logger.Logger
}

type Response struct {
	Status  *Status           `json:"status"`
	Results []json.RawMessage `json:"results"`
}

type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Result struct {
	Formatted *string `json:"formatted"`
}

func New(log *logger.Logger, lang language.Tag, apikey string) (*OpenCage, error) {
	if apikey == "" {
		return nil, fmt.Errorf("opencage: %w", geocode.ErrMissingCredentials)
	}
	return &OpenCage{
		apikey: apikey,
		lang:   lang,
		logger: log,
	}, nil
}

func (o *OpenCage) Name() string {
	return name
}

func (o *OpenCage) Endpoint() string {
	return APIEndpoint
}

func (o *OpenCage) Query(coord geocode.Coordinate) url.Values {
	query := url.Values{}
	query.Set("key", o.apikey)
	query.Set("q", coord.Lat+","+coord.Lng)
	query.Set("no_annotations", "1")
	query.Set("no_record", "1")
	if o.lang != language.Und {
		query.Set("language", o.lang.String())
	}
	return query
}

func (o *OpenCage) Normalize(body json.RawMessage) ([]string, error) {
	var response Response
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "failed to decode response: %w", err)
	}
	if response.Status != nil && response.Status.Code != statusOK {
		o.logger.Error("unexpected response status", slog.String("authority", name),
			slog.Int("code", response.Status.Code), slog.String("message", response.Status.Message))
		return nil, geocode.NewUpstreamError(geocode.KindStatus, "response status %d", response.Status.Code)
	}
	if response.Results == nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "response has no results list")
	}

	addresses := make([]string, 0, len(response.Results))
	for i, raw := range response.Results {
		var result Result
		if err := json.Unmarshal(raw, &result); err != nil {
			o.logger.Warn("skipping unrecognized result", slog.String("authority", name), slog.Int("result", i),
				logger.Err(err))
			continue
		}
		if result.Formatted == nil {
			continue
		}
		addresses = append(addresses, *result.Formatted)
	}
	return addresses, nil
}
