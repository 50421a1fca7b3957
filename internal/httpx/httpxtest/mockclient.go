// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpxtest provides a scripted httpx.BasicClient double for unit
// tests of upstream clients.
package httpxtest

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Call describes one expected request/response pair. Headers, if non-nil,
// asserts that each named header is present with the given value on the
// incoming request (e.g. If-None-Match, Authorization).
type Call struct {
	Method   string
	URL      string
	Headers  map[string]string
	Response *http.Response
	Error    error
}

// MockClient replays Calls in order, panicking if more requests arrive
// than were scripted.
type MockClient struct {
	Calls             []Call
	URLValidator      func(expected, actual string)
	SkipURLValidation bool
	callCount         int
}

// Do returns the next scripted Response/Error, validating the request URL
// and headers against the corresponding Call.
func (m *MockClient) Do(req *http.Request) (*http.Response, error) {
	if m.callCount >= len(m.Calls) {
		panic("unexpected request")
	}
	call := m.Calls[m.callCount]
	m.callCount++

	if !m.SkipURLValidation && m.URLValidator == nil {
		panic("URL validation requested but not configured")
	} else if m.SkipURLValidation && m.URLValidator != nil {
		panic("URL validation disabled but configured")
	}
	if m.URLValidator != nil {
		if call.Method != "" {
			m.URLValidator(call.Method+" "+call.URL, req.Method+" "+req.URL.String())
		} else {
			m.URLValidator(call.URL, req.URL.String())
		}
	}
	for header, want := range call.Headers {
		if got := req.Header.Get(header); got != want {
			panic("header " + header + " mismatch: want " + want + " got " + got)
		}
	}

	return call.Response, call.Error
}

// CallCount returns the number of requests served so far.
func (m *MockClient) CallCount() int {
	return m.callCount
}

// NewURLValidator returns a URLValidator that fails the test on mismatch.
func NewURLValidator(t *testing.T) func(string, string) {
	return func(expected, actual string) {
		t.Helper()
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Fatalf("URL mismatch (-want +got):\n%s", diff)
		}
	}
}
