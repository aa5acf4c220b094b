// Package router mounts the dashboard's route groups under a versioned
// API prefix.
package router

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts its routes onto the versioned API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them on Setup under /api/<version>.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware gin.HandlersChain
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion overrides the "v1" path segment.
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware that only runs for versioned API routes, not for
// routes registered directly on the engine.
func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, mw...)
	return r
}

func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// BasePath is the versioned API prefix, e.g. "/api/v1".
func (r *Router) BasePath() string { return "/api/" + r.apiVersion }

// Setup mounts every registered group. Call it once, after all Register calls.
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath(), r.middleware...)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

// RouteInfo is a method and absolute path pair.
type RouteInfo struct {
	Method string
	Path   string
}

type route struct {
	RouteInfo
	chain gin.HandlersChain
}

// DomainGroup declares the routes of one API area under a shared prefix.
// Nothing reaches gin until RegisterRoutes is called.
type DomainGroup struct {
	name       string
	prefix     string
	middleware gin.HandlersChain
	routes     []route
	children   []*DomainGroup
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string   { return dg.name }
func (dg *DomainGroup) Prefix() string { return dg.prefix }

// Use adds middleware scoped to this group and its subgroups.
func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, mw...)
	return dg
}

func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodGet, relativePath, handlers)
}

func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.add(http.MethodPost, relativePath, handlers)
}

func (dg *DomainGroup) add(method, relativePath string, handlers gin.HandlersChain) *DomainGroup {
	dg.routes = append(dg.routes, route{RouteInfo{Method: method, Path: relativePath}, handlers})
	return dg
}

// Group returns a new subgroup nested under this group's prefix.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	dg.children = append(dg.children, child)
	return child
}

func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group(dg.prefix, dg.middleware...)
	for _, rt := range dg.routes {
		g.Handle(rt.Method, rt.Path, rt.chain...)
	}
	for _, child := range dg.children {
		child.RegisterRoutes(g)
	}
}

// Routes lists this group's routes and those of its subgroups as absolute
// paths under base.
func (dg *DomainGroup) Routes(base string) []RouteInfo {
	prefix := path.Join(base, dg.prefix)
	out := make([]RouteInfo, 0, len(dg.routes))
	for _, rt := range dg.routes {
		out = append(out, RouteInfo{Method: rt.Method, Path: joinRoute(prefix, rt.Path)})
	}
	for _, child := range dg.children {
		out = append(out, child.Routes(prefix)...)
	}
	return out
}

// joinRoute mirrors gin's joining, which keeps a trailing slash.
func joinRoute(prefix, rel string) string {
	if rel == "" {
		return prefix
	}
	joined := path.Join(prefix, rel)
	if strings.HasSuffix(rel, "/") && !strings.HasSuffix(joined, "/") {
		joined += "/"
	}
	return joined
}
