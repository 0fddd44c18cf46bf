package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/itsatony/roomwatch/api/middleware"
	"github.com/itsatony/roomwatch/api/resources"
)

type Router struct {
	router    *mux.Router
	store     middleware.SessionStore
	resources *resources.Resources
}

func NewRouter(deps resources.Deps) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		store:     deps.Store,
		resources: resources.NewResources(deps),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	pages := r.resources.Pages

	r.router.HandleFunc("/", r.resources.Root).Methods(http.MethodGet)
	r.router.HandleFunc("/login", pages.LoginForm).Methods(http.MethodGet)
	r.router.HandleFunc("/login", pages.Login).Methods(http.MethodPost)
	r.router.HandleFunc("/logout", pages.Logout).Methods(http.MethodPost)

	// Screens behind the session guard
	guarded := r.router.PathPrefix("/dashboard").Subrouter()
	guarded.Use(middleware.RequireSession(r.store, "/login"))
	guarded.HandleFunc("", pages.Dashboard).Methods(http.MethodGet)
	guarded.HandleFunc("/stream", r.resources.Stream.Stream).Methods(http.MethodGet)

	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.resources.System.Health).Methods(http.MethodGet)
	api.HandleFunc("/metrics", r.resources.System.Metrics).Methods(http.MethodGet)
	api.HandleFunc("/events", r.resources.System.Events).Methods(http.MethodGet)
	api.HandleFunc("/swagger.json", r.resources.System.Swagger).Methods(http.MethodGet)

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireSessionAPI(r.store))
	protected.HandleFunc("/state", r.resources.State.GetState).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
