// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package here

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"golang.org/x/text/language"

	"github.com/wneessen/addressgw/internal/geocode"
	"github.com/wneessen/addressgw/internal/logger"
)

const (
	SandboxEndpoint    = "https://reverse.geocoder.cit.api.here.com/6.2/reversegeocode.json"
	ProductionEndpoint = "https://reverse.geocoder.api.here.com/6.2/reversegeocode.json"
	name               = "here"

	// MinRelevance is the minimum confidence score for an address to be accepted
	MinRelevance = 1.0
	// ProximityRadius is the search radius around the coordinate in meters
	ProximityRadius = 25
	// MaxResults is the maximum number of results requested from the API
	MaxResults = 100
	// Generation selects the API response format generation
	Generation = 8

	locationTypeAddress = "address"
)

// Credentials are the application credentials issued by HERE
type Credentials struct {
	AppID   string
	AppCode string
}

type Here struct {
	creds    Credentials
	endpoint string
	lang     language.Tag
	logger   *logger.Logger
}

// New returns a HERE geocoder authority. production selects the production endpoint
// instead of the sandbox (CIT) endpoint.
func New(log *logger.Logger, lang language.Tag, creds Credentials, production bool) (*Here, error) {
	if creds.AppID == "" || creds.AppCode == "" {
		return nil, fmt.Errorf("here: %w", geocode.ErrMissingCredentials)
	}
	endpoint := SandboxEndpoint
	if production {
		endpoint = ProductionEndpoint
	}
	return &Here{
		creds:    creds,
		endpoint: endpoint,
		lang:     lang,
		logger:   log,
	}, nil
}

func (h *Here) Name() string {
	return name
}

func (h *Here) Endpoint() string {
	return h.endpoint
}

func (h *Here) Query(coord geocode.Coordinate) url.Values {
	query := url.Values{}
	query.Set("mode", "retrieveAddresses")
	query.Set("maxresults", strconv.Itoa(MaxResults))
	query.Set("gen", strconv.Itoa(Generation))
	query.Set("app_id", h.creds.AppID)
	query.Set("app_code", h.creds.AppCode)
	query.Set("prox", fmt.Sprintf("%s,%s,%d", coord.Lat, coord.Lng, ProximityRadius))
	if h.lang != language.Und {
		query.Set("language", h.lang.String())
	}
	return query
}

// Normalize extracts the address labels of the relevant results. A malformed outer
// structure fails the whole response, while a malformed single result is skipped. Keys are
// matched exactly as HERE sends them.
func (h *Here) Normalize(body json.RawMessage) ([]string, error) {
	root, err := geocode.DecodeObject(body)
	if err != nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "failed to decode response: %w", err)
	}
	response, ok, err := root.Child("Response")
	if err != nil || !ok {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "response has no Response object")
	}
	var views []json.RawMessage
	if ok, err = response.Field("View", &views); err != nil || !ok {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "response has no view list")
	}

	switch {
	case len(views) == 0:
		return []string{}, nil
	case len(views) > 1:
		h.logger.Error("not sure how to handle more than one view in the response", slog.String("authority", name),
			slog.Int("views", len(views)))
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "response has %d views", len(views))
	}

	view, err := geocode.DecodeObject(views[0])
	if err != nil {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "failed to decode view: %w", err)
	}
	var results []json.RawMessage
	if ok, err = view.Field("Result", &results); err != nil || !ok {
		return nil, geocode.NewUpstreamError(geocode.KindStructure, "view has no result list")
	}

	addresses := make([]string, 0, len(results))
	for i, raw := range results {
		label, err := h.address(raw)
		if err != nil {
			h.logger.Warn("skipping result", slog.String("authority", name), slog.Int("result", i),
				slog.String("raw", string(raw)), logger.Err(err))
			continue
		}
		addresses = append(addresses, label)
	}
	return addresses, nil
}

// address returns the label of an acceptable result or an error describing why the result
// was not accepted
func (h *Here) address(raw json.RawMessage) (string, error) {
	result, err := geocode.DecodeObject(raw)
	if err != nil {
		return "", fmt.Errorf("unrecognized result structure: %w", err)
	}

	var relevance float64
	ok, err := result.Field("Relevance", &relevance)
	switch {
	case err != nil:
		return "", err
	case !ok:
		return "", fmt.Errorf("result has no relevance")
	case relevance < MinRelevance:
		return "", fmt.Errorf("relevance %g is below %g", relevance, MinRelevance)
	}

	location, ok, err := result.Child("Location")
	if err != nil {
		return "", err
	}
	var locationType string
	if ok {
		if ok, err = location.Field("LocationType", &locationType); err != nil {
			return "", err
		}
	}
	if !ok {
		return "", fmt.Errorf("result has no location type")
	}
	if locationType != locationTypeAddress {
		return "", fmt.Errorf("location type %q is not %q", locationType, locationTypeAddress)
	}

	address, ok, err := location.Child("Address")
	if err != nil {
		return "", err
	}
	var label string
	if ok {
		if ok, err = address.Field("Label", &label); err != nil {
			return "", err
		}
	}
	if !ok {
		return "", fmt.Errorf("address is absent")
	}
	return label, nil
}
