// Copyright 2026 The Artifetch Authors
// SPDX-License-Identifier: Apache-2.0

package httpxtest

import (
	"bytes"
	"io"
	"net/http"
)

// Body wraps a string as a response body.
func Body(b string) io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(b)))
}

// JSONResponse builds a minimal *http.Response carrying body as its JSON
// payload, status as its code, and etag (if non-empty) as its ETag header.
func JSONResponse(status int, body, etag string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	if etag != "" {
		header.Set("ETag", etag)
	}
	return &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Header:     header,
		Body:       Body(body),
	}
}
