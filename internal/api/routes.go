package api

import (
	"net/http"

	"github.com/concordsec/concord/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Frameworks.Handler().Routes(),
		domain.Embeddings.Handler().Routes(),
		domain.Similarity.Handler().Routes(),
		domain.Clusters.Handler().Routes(),
		domain.Crosswalks.Handler().Routes(),
		domain.Assessments.Handler().Routes(),
		domain.Artifacts.Handler().Routes(),
		domain.Interviews.Handler().Routes(),
		domain.Scoring.Handler().Routes(),
		domain.Deviations.Handler().Routes(),
	)
}
