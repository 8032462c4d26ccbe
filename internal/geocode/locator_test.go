// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/url"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/wneessen/addressgw/internal/http"
	"github.com/wneessen/addressgw/internal/logger"
	"github.com/wneessen/addressgw/internal/testhelper"
)

const testEndpoint = "https://geocoder.example.com/reverse"

// testAuthority echoes the "addresses" list of the response body
type testAuthority struct {
	name string
}

func (a testAuthority) Name() string     { return a.name }
func (a testAuthority) Endpoint() string { return testEndpoint }

func (a testAuthority) Query(coord Coordinate) url.Values {
	query := url.Values{}
	query.Set("key", "secret-key")
	query.Set("latlng", coord.String())
	return query
}

func (a testAuthority) Normalize(body json.RawMessage) ([]string, error) {
	var response struct {
		Addresses []string `json:"addresses"`
		Fail      string   `json:"fail"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	if response.Fail != "" {
		return nil, NewUpstreamError(KindStatus, "%s", response.Fail)
	}
	return response.Addresses, nil
}

var testCoord = Coordinate{Lat: "41.88391", Lng: "-87.63845"}

func TestLocator_Locate(t *testing.T) {
	t.Run("addresses are returned", func(t *testing.T) {
		var gotQuery url.Values
		respFn := testhelper.StringResponder(`{"addresses":["123 Main St"]}`, 200)
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			gotQuery = req.URL.Query()
			return respFn(req)
		}
		locator, _ := testLocator(rtFn)
		addrs, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		if err != nil {
			t.Fatal(err)
		}
		if len(addrs) != 1 || addrs[0] != "123 Main St" {
			t.Errorf("expected single address, got %v", addrs)
		}
		if gotQuery.Get("latlng") != "41.88391,-87.63845" {
			t.Errorf("expected latlng to be sent unchanged, got %q", gotQuery.Get("latlng"))
		}
	})
	t.Run("no addresses yields an empty list", func(t *testing.T) {
		locator, _ := testLocator(testhelper.StringResponder(`{}`, 200))
		addrs, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		if err != nil {
			t.Fatal(err)
		}
		if addrs == nil || len(addrs) != 0 {
			t.Errorf("expected empty non-nil list, got %#v", addrs)
		}
	})
	t.Run("transport failure is classified", func(t *testing.T) {
		locator, _ := testLocator(func(*stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("connection refused")
		})
		_, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindTransport)
	})
	t.Run("client error status is classified and logged", func(t *testing.T) {
		locator, buf := testLocator(testhelper.StringResponder("bad request", 400))
		_, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindStatus)
		if !strings.Contains(buf.String(), "possible API implementation flaw or change upstream") {
			t.Errorf("expected contract change to be logged, got %q", buf.String())
		}
	})
	t.Run("server error status is classified but not logged as contract change", func(t *testing.T) {
		locator, buf := testLocator(testhelper.StringResponder("unavailable", 503))
		_, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindStatus)
		if strings.Contains(buf.String(), "possible API implementation flaw") {
			t.Errorf("did not expect contract change log for 5xx, got %q", buf.String())
		}
	})
	t.Run("redirect status is classified", func(t *testing.T) {
		rtFn := func(*stdhttp.Request) (*stdhttp.Response, error) {
			header := make(stdhttp.Header)
			header.Set("Location", "https://elsewhere.example.com/")
			return &stdhttp.Response{
				StatusCode: stdhttp.StatusMovedPermanently,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     header,
			}, nil
		}
		locator, _ := testLocator(rtFn)
		_, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindStatus)
	})
	t.Run("invalid JSON is classified", func(t *testing.T) {
		locator, _ := testLocator(testhelper.StringResponder("<html></html>", 200))
		_, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindBody)
	})
	t.Run("trailing data after the JSON body is classified as invalid body", func(t *testing.T) {
		locator, _ := testLocator(testhelper.StringResponder(`{"addresses":["1 A St"]}<html>oops</html>`, 200))
		addrs, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindBody)
		if addrs != nil {
			t.Errorf("expected no addresses, got %v", addrs)
		}
	})
	t.Run("a body read failure is classified as transport", func(t *testing.T) {
		locator, _ := testLocator(func(*stdhttp.Request) (*stdhttp.Response, error) {
			body := io.MultiReader(strings.NewReader(`{"addresses":["1 A`),
				iotest.ErrReader(errors.New("read tcp 127.0.0.1:4711: i/o timeout")))
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       io.NopCloser(body),
				Header:     make(stdhttp.Header),
			}, nil
		})
		_, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindTransport)
	})
	t.Run("normalize upstream errors keep their kind", func(t *testing.T) {
		locator, _ := testLocator(testhelper.StringResponder(`{"fail":"REQUEST_DENIED"}`, 200))
		_, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindStatus)
	})
	t.Run("other normalize errors are structure errors", func(t *testing.T) {
		locator, _ := testLocator(testhelper.StringResponder(`{"addresses":"not a list"}`, 200))
		_, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord)
		assertUpstream(t, err, "test", KindStructure)
	})
	t.Run("credentials are not logged", func(t *testing.T) {
		locator, buf := testLocator(testhelper.StringResponder(`{}`, 200))
		if _, err := locator.Locate(t.Context(), testAuthority{name: "test"}, testCoord); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "secret-key") {
			t.Errorf("expected credentials to be redacted, got %q", buf.String())
		}
		if !strings.Contains(buf.String(), "key=REDACTED") {
			t.Errorf("expected redacted key in log, got %q", buf.String())
		}
	})
}

func TestNewLocator(t *testing.T) {
	locator := NewLocator(http.New(logger.NewLogger(slog.LevelInfo, io.Discard)),
		logger.NewLogger(slog.LevelInfo, io.Discard), 0)
	if locator.timeout != DefaultTimeout {
		t.Errorf("expected default timeout %s, got %s", DefaultTimeout, locator.timeout)
	}
}

func TestRedactURL(t *testing.T) {
	query := url.Values{}
	query.Set("app_id", "id")
	query.Set("app_code", "code")
	query.Set("prox", "1.00000,2.00000,25")
	got := redactURL(testEndpoint, query)
	if strings.Contains(got, "=id") || strings.Contains(got, "=code") {
		t.Errorf("expected credentials to be redacted, got %q", got)
	}
	if query.Get("app_id") != "id" {
		t.Error("expected original query to stay untouched")
	}
	if redactURL(testEndpoint, nil) != testEndpoint {
		t.Error("expected endpoint without query to be returned unchanged")
	}
}

func testLocator(fn func(req *stdhttp.Request) (*stdhttp.Response, error)) (*Locator, *bytes.Buffer) {
	buf := bytes.NewBuffer(nil)
	log := logger.NewLogger(slog.LevelDebug, buf)
	client := http.New(log)
	client.Transport = testhelper.MockRoundTripper{Fn: fn}
	return NewLocator(client, log, DefaultTimeout), buf
}

func assertUpstream(t *testing.T, err error, authority string, kind Kind) {
	t.Helper()
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if upErr.Authority != authority {
		t.Errorf("expected authority %q, got %q", authority, upErr.Authority)
	}
	if upErr.Kind != kind {
		t.Errorf("expected kind %q, got %q", kind, upErr.Kind)
	}
}
