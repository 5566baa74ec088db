// Package router implements the minimal path router used by the HTTP
// surface. Routes are matched in registration order: the first route
// whose method and segments fit the request wins. There is no
// specificity ordering and no catch-all segment.
package router

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

type Params map[string]string

type Handler func(w http.ResponseWriter, r *http.Request, ps Params)

type route struct {
	method   string
	segments []string
	handler  Handler
}

type Router struct {
	routes   []route
	notFound Handler
}

func New() *Router {
	return &Router{
		notFound: func(w http.ResponseWriter, r *http.Request, _ Params) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Invalid path, see /help for available endpoints",
			})
		},
	}
}

// NotFound replaces the handler invoked when no route matches.
func (r *Router) NotFound(h Handler) {
	r.notFound = h
}

// Handle registers a route. Patterns are split on '/', empty segments
// are discarded, and a segment starting with ':' binds the
// corresponding request segment under the name after the colon. Any
// other segment must match literally and case-sensitively.
// Registration order is the match priority order.
func (r *Router) Handle(method, pattern string, h Handler) {
	r.routes = append(r.routes, route{
		method:   method,
		segments: splitPath(pattern),
		handler:  h,
	})
}

// Match returns the first registered route fitting the method and
// path, along with the URL-decoded parameter bindings. Leading and
// trailing slashes on the path are insignificant; the segment counts
// must be equal.
func (r *Router) Match(method, path string) (Handler, Params, bool) {
	segments := splitPath(path)
L:
	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		if len(rt.segments) != len(segments) {
			continue
		}
		ps := make(Params)
		for i, pat := range rt.segments {
			if strings.HasPrefix(pat, ":") {
				ps[pat[1:]] = unescape(segments[i])
				continue
			}
			if pat != segments[i] {
				continue L
			}
		}
		return rt.handler, ps, true
	}
	return nil, nil, false
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h, ps, ok := r.Match(req.Method, req.URL.EscapedPath())
	if !ok {
		r.notFound(w, req, nil)
		return
	}
	h(w, req, ps)
}

func splitPath(p string) []string {
	segments := make([]string, 0, 4)
	for _, s := range strings.Split(p, "/") {
		if len(s) > 0 {
			segments = append(segments, s)
		}
	}
	return segments
}

func unescape(s string) string {
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return u
}
