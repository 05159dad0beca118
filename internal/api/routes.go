package api

import (
	"net/http"

	"github.com/JaimeStill/scribe/internal/pipeline"
	"github.com/JaimeStill/scribe/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	groups := []routes.Group{
		pipeline.NewHandler(
			domain.Session,
			runtime.Logger,
			runtime.Lifecycle.Context(),
			runtime.Extractor.Supports,
			runtime.MaxUploadSize,
		).Routes(),
	}

	if domain.Archive != nil {
		groups = append(groups, domain.Archive.Handler().Routes())
	}

	routes.Register(mux, groups...)
}
