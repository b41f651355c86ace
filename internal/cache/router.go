package cache

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Route is the caching policy chosen for one request.
type Route int

const (
	// RoutePassthrough goes straight to the network, untouched by any cache.
	RoutePassthrough Route = iota
	// RouteAPI is network-first with the api partition as fallback.
	RouteAPI
	// RouteStatic is cache-first, lazily populating the dynamic partition.
	RouteStatic
	// RouteNavigation falls back to the cached shell document on failure.
	RouteNavigation
)

func (r Route) String() string {
	switch r {
	case RouteAPI:
		return "api"
	case RouteStatic:
		return "static"
	case RouteNavigation:
		return "navigation"
	default:
		return "passthrough"
	}
}

// Router classifies requests by URL shape. Classification is pure: the same
// method and URL always map to the same route.
type Router struct {
	apiPrefix      string
	staticPrefixes []string
	staticExts     map[string]struct{}
}

func NewRouter(apiPrefix string, staticPrefixes, staticExtensions []string) *Router {
	exts := make(map[string]struct{}, len(staticExtensions))
	for _, ext := range staticExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Router{
		apiPrefix:      apiPrefix,
		staticPrefixes: append([]string(nil), staticPrefixes...),
		staticExts:     exts,
	}
}

// Classify maps a request onto exactly one route. Non-GET requests are never
// intercepted. GETs with the API prefix are api; GETs with a static prefix or
// a known static extension are static; every other GET is a page navigation.
func (r *Router) Classify(method string, u *url.URL) Route {
	if method != http.MethodGet {
		return RoutePassthrough
	}

	p := u.Path
	if r.apiPrefix != "" && strings.HasPrefix(p, r.apiPrefix) {
		return RouteAPI
	}
	for _, prefix := range r.staticPrefixes {
		if strings.HasPrefix(p, prefix) {
			return RouteStatic
		}
	}
	if ext := strings.ToLower(path.Ext(p)); ext != "" {
		if _, ok := r.staticExts[ext]; ok {
			return RouteStatic
		}
	}
	return RouteNavigation
}

// requestKey is the full request identity a cached response is stored under.
// Scheme and host are part of the key so equal paths on different origins
// never collide.
func requestKey(method string, u *url.URL) string {
	return method + " " + u.Scheme + "://" + u.Host + u.RequestURI()
}
