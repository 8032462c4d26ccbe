// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocodeearth

import (
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/wneessen/addressgw/internal/geocode"
	"github.com/wneessen/addressgw/internal/http"
	"github.com/wneessen/addressgw/internal/logger"
	"github.com/wneessen/addressgw/internal/testhelper"
)

const (
	cityExpected = "67 Friedrichstraße, Berlin, Germany"
	cityResponse = `{"type":"FeatureCollection","features":[{"type":"Feature",` +
		`"properties":{"label":"67 Friedrichstraße, Berlin, Germany","locality":"Berlin"}}]}`
	testAPIKey = "test-api-key"
)

var cityCoords = geocode.Coordinate{Lat: "52.51290", Lng: "13.39100"}

func TestNew(t *testing.T) {
	t.Run("creating a new authority succeeds", func(t *testing.T) {
		coder := testCoder(t)
		if coder == nil {
			t.Fatal("expected a non-nil authority")
		}
	})
	t.Run("authority name is correct", func(t *testing.T) {
		coder := testCoder(t)
		if coder.Name() != name {
			t.Errorf("expected authority name to be %q, got %q", name, coder.Name())
		}
	})
	t.Run("creating an authority without API key fails", func(t *testing.T) {
		_, err := New(testLogger(), language.Und, "")
		if !errors.Is(err, geocode.ErrMissingCredentials) {
			t.Errorf("expected error to be %s, got %v", geocode.ErrMissingCredentials, err)
		}
	})
}

func TestGeocodeEarth_Query(t *testing.T) {
	t.Run("query contains key and coordinates", func(t *testing.T) {
		query := testCoder(t).Query(cityCoords)
		want := map[string]string{
			"api_key":   testAPIKey,
			"point.lat": cityCoords.Lat,
			"point.lon": cityCoords.Lng,
			"layers":    "address",
		}
		for k, v := range want {
			if got := query.Get(k); got != v {
				t.Errorf("expected query parameter %q to be %q, got %q", k, v, got)
			}
		}
		if query.Has("lang") {
			t.Error("expected no lang parameter for undetermined language")
		}
	})
}

func TestGeocodeEarth_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     []string
		wantKind geocode.Kind
	}{
		{"single feature", cityResponse, []string{cityExpected}, geocode.KindUnknown},
		{"no features is an empty success", `{"features":[]}`, []string{}, geocode.KindUnknown},
		{
			"features without label are skipped",
			`{"features":[{"properties":{}},{},7,{"properties":{"label":"B"}},{"properties":{"label":"A"}}]}`,
			[]string{"B", "A"}, geocode.KindUnknown,
		},
		{"missing features fails", `{"type":"FeatureCollection"}`, nil, geocode.KindStructure},
		{"features that are not a list fail", `{"features":"none"}`, nil, geocode.KindStructure},
	}

	coder := testCoder(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := coder.Normalize([]byte(tc.body))
			if tc.wantKind != geocode.KindUnknown {
				if !geocode.IsKind(err, tc.wantKind) {
					t.Errorf("expected error kind %q, got %v", tc.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %s", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("unexpected addresses (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGeocodeEarth_Locate(t *testing.T) {
	t.Run("reverse geocoding succeeds", func(t *testing.T) {
		addrs, err := testLocator(testhelper.StringResponder(cityResponse, 200)).Locate(t.Context(),
			testCoder(t), cityCoords)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{cityExpected}, addrs); diff != "" {
			t.Errorf("unexpected addresses (-want +got):\n%s", diff)
		}
	})
	t.Run("API responding with a non-200 response", func(t *testing.T) {
		body := `{"geocoding":{"errors":["invalid api_key"]}}`
		_, err := testLocator(testhelper.StringResponder(body, 401)).Locate(t.Context(), testCoder(t), cityCoords)
		if !geocode.IsKind(err, geocode.KindStatus) {
			t.Errorf("expected status error, got %v", err)
		}
	})
}

func TestGeocodeEarth_Locate_integration(t *testing.T) {
	testhelper.PerformIntegrationTests(t)
	apikey := os.Getenv("GEOCODE_EARTH_APIKEY")
	if apikey == "" {
		t.Skip("no geocode.earth API key set, skipping tests")
	}
	coder, err := New(testLogger(), language.English, apikey)
	if err != nil {
		t.Fatal(err)
	}
	locator := geocode.NewLocator(http.New(testLogger()), testLogger(), geocode.DefaultTimeout)
	if _, err = locator.Locate(t.Context(), coder, cityCoords); err != nil {
		t.Fatal(err)
	}
}

func testCoder(t *testing.T) *GeocodeEarth {
	t.Helper()
	coder, err := New(testLogger(), language.Und, testAPIKey)
	if err != nil {
		t.Fatalf("failed to create authority: %s", err)
	}
	return coder
}

func testLocator(fn func(req *stdhttp.Request) (*stdhttp.Response, error)) *geocode.Locator {
	client := http.New(testLogger())
	client.Transport = testhelper.MockRoundTripper{Fn: fn}
	return geocode.NewLocator(client, testLogger(), geocode.DefaultTimeout)
}

func testLogger() *logger.Logger {
	return logger.NewLogger(slog.LevelDebug, io.Discard)
}
