package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/lindestad/gantt/internal/api/v1"
	"github.com/lindestad/gantt/internal/api/ws"
	"github.com/lindestad/gantt/internal/store/postgres"
)

func registerAPIRoutes(api huma.API, store *postgres.Store, hub *ws.Hub) {
	v1.RegisterProjectRoutes(api, store)
	v1.RegisterTaskRoutes(api, store, hub)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/projects/{projectID}", hub.ServeProject)
}
