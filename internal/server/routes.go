package server

import (
	"time"

	"github.com/utkarsh5026/poolserve/internal/config"
)

const (
	StatusOK       = "HTTP/1.1 200 OK"
	StatusNotFound = "HTTP/1.1 404 NOT FOUND"

	IndexRequestLine = "GET / HTTP/1.1"
	IndexFile        = "hello.html"
	NotFoundFile     = "404.html"
)

// Route is one exact-match entry of the response table.
type Route struct {
	RequestLine string
	Status      string
	File        string
	Delay       time.Duration
}

// Router matches a request line against the response table. Anything
// without an exact match gets the not-found route.
type Router struct {
	routes   map[string]Route
	notFound Route
}

// NewRouter returns the default table (GET / -> hello.html) extended by
// extra. An extra route for an existing request line replaces it.
func NewRouter(extra []config.Route) *Router {
	r := &Router{
		routes: map[string]Route{
			IndexRequestLine: {RequestLine: IndexRequestLine, Status: StatusOK, File: IndexFile},
		},
		notFound: Route{Status: StatusNotFound, File: NotFoundFile},
	}

	for _, c := range extra {
		r.routes[c.RequestLine] = Route{
			RequestLine: c.RequestLine,
			Status:      c.Status,
			File:        c.File,
			Delay:       c.Delay,
		}
	}
	return r
}

// Match returns the route for line.
func (r *Router) Match(line string) Route {
	if route, ok := r.routes[line]; ok {
		return route
	}
	return r.notFound
}

// Len returns the number of exact-match routes.
func (r *Router) Len() int {
	return len(r.routes)
}
