package cache

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
)

// Transport adapts the cache to http.RoundTripper so an *http.Client can be
// pointed at it and every request the application issues passes through the
// routing policies. Requests the router never intercepts (non-GETs) are
// handed to Base untouched: no cache timeout, no body buffering.
type Transport struct {
	Cache *Cache
	// Base handles passthrough requests. Defaults to http.DefaultTransport.
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Cache.router.Classify(req.Method, req.URL) == RoutePassthrough {
		base := t.Base
		if base == nil {
			base = http.DefaultTransport
		}
		return base.RoundTrip(req)
	}

	entry, err := t.Cache.Handle(req.Context(), req)
	if err != nil {
		return nil, err
	}
	return entryResponse(entry, req), nil
}

func entryResponse(e *Entry, req *http.Request) *http.Response {
	return &http.Response{
		Status:        strconv.Itoa(e.Status) + " " + http.StatusText(e.Status),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
