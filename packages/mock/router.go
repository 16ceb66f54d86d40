package mock

import (
	"net/http"
	"regexp"
	"strings"
)

// HandlerFunc serves a matched route with its path parameters.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, params map[string]string)

// Route is one method + path pattern. Patterns use {{name}} for parameters.
type Route struct {
	Method      string
	PathPattern string
	PathRegex   *regexp.Regexp
	Handler     HandlerFunc
}

// Router matches incoming requests to routes
type Router struct {
	routes []*Route
}

func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// Handle registers a handler for method and pattern.
func (r *Router) Handle(method, pattern string, h HandlerFunc) {
	r.routes = append(r.routes, &Route{
		Method:      method,
		PathPattern: pattern,
		PathRegex:   createPathRegex(pattern),
		Handler:     h,
	})
}

// Match finds a route matching the given method and path. When the path
// matches but the method does not, pathKnown is still true.
func (r *Router) Match(method, path string) (route *Route, params map[string]string, pathKnown bool) {
	path = normalizePath(path)

	for _, rt := range r.routes {
		p := matchPath(rt, path)
		if p == nil {
			continue
		}
		pathKnown = true
		if strings.EqualFold(rt.Method, method) {
			return rt, p, true
		}
	}

	return nil, nil, pathKnown
}

func (r *Router) Routes() []*Route {
	return r.routes
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

var paramPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

func createPathRegex(pattern string) *regexp.Regexp {
	parts := paramPattern.Split(pattern, -1)
	names := paramPattern.FindAllStringSubmatch(pattern, -1)

	var b strings.Builder
	b.WriteString("^")
	for i, part := range parts {
		b.WriteString(regexp.QuoteMeta(part))
		if i < len(names) {
			b.WriteString(`(?P<` + strings.TrimSpace(names[i][1]) + `>[^/]+)`)
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

func matchPath(route *Route, path string) map[string]string {
	matches := route.PathRegex.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}
	params := make(map[string]string)
	for i, name := range route.PathRegex.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = matches[i]
		}
	}
	return params
}
