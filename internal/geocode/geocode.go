// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode resolves coordinates into street addresses by querying a set of
// reverse geocoding authorities with randomized failover.
package geocode

import (
	"encoding/json"
	"net/url"
)

// Authority is an upstream reverse geocoding API. Implementations hold their configuration
// and credentials from construction on and must be safe for concurrent use.
type Authority interface {
	// Name returns the unique name of the authority
	Name() string
	// Endpoint returns the base URL of the API
	Endpoint() string
	// Query returns the full set of query parameters, including credentials, for a lookup of
	// the given coordinate
	Query(coord Coordinate) url.Values
	// Normalize converts the JSON response body into a list of addresses. An empty list
	// means that the authority has no address for the location.
	Normalize(body json.RawMessage) ([]string, error)
}

// Status is the outcome of a lookup as reported to callers
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
	StatusFail  Status = "FAIL"
)

// MsgNoValidResponse is the message of a FAIL response
const MsgNoValidResponse = "No valid response from authorities"

// Response is the result of a lookup. Results is only meaningful for StatusOK, Message
// only for StatusError and StatusFail.
type Response struct {
	Status  Status
	Results []string
	Message string
}

// OKResponse returns a successful Response with the given addresses
func OKResponse(results []string) Response {
	if results == nil {
		results = []string{}
	}
	return Response{Status: StatusOK, Results: results}
}

// ErrorResponse returns a Response for invalid caller input
func ErrorResponse(msg string) Response {
	return Response{Status: StatusError, Message: msg}
}

// FailResponse returns the Response used when no authority could answer
func FailResponse() Response {
	return Response{Status: StatusFail, Message: MsgNoValidResponse}
}

type okWire struct {
	Results []string `json:"results"`
	Status  Status   `json:"status"`
}

type msgWire struct {
	Status  Status `json:"status"`
	Message string `json:"status-msg"`
}

// MarshalJSON encodes the Response in its wire format. An OK response always carries a
// results list, even when it is empty.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Status == StatusOK {
		results := r.Results
		if results == nil {
			results = []string{}
		}
		return json.Marshal(okWire{Results: results, Status: r.Status})
	}
	return json.Marshal(msgWire{Status: r.Status, Message: r.Message})
}
