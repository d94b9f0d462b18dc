package api

import (
	"github.com/concordsec/concord/internal/artifacts"
	"github.com/concordsec/concord/internal/assessments"
	"github.com/concordsec/concord/internal/clusters"
	"github.com/concordsec/concord/internal/crosswalks"
	"github.com/concordsec/concord/internal/deviations"
	"github.com/concordsec/concord/internal/embeddings"
	"github.com/concordsec/concord/internal/frameworks"
	"github.com/concordsec/concord/internal/interviews"
	"github.com/concordsec/concord/internal/scoring"
	"github.com/concordsec/concord/internal/similarity"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Frameworks  frameworks.System
	Embeddings  embeddings.System
	Similarity  similarity.System
	Clusters    clusters.System
	Crosswalks  crosswalks.System
	Assessments assessments.System
	Artifacts   artifacts.System
	Interviews  interviews.System
	Scoring     scoring.System
	Deviations  deviations.System
}

// NewDomain creates all domain systems from the API runtime, wiring them in
// dependency order: the requirement store feeds the similarity engine, which
// feeds clustering and crosswalking; scoring consumes artifact, interview,
// and crosswalk evidence; deviations consume scoring.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()
	provider := embeddings.NewProvider(&runtime.Embeddings)

	frameworksSystem := frameworks.New(db, runtime.Logger, runtime.Pagination)

	embeddingsSystem := embeddings.New(
		frameworksSystem,
		provider,
		runtime.Embeddings.BatchSize,
		runtime.Logger,
	)

	similaritySystem := similarity.New(frameworksSystem, provider, runtime.Logger)

	clustersSystem := clusters.New(
		db,
		frameworksSystem,
		similaritySystem,
		runtime.Logger,
		runtime.Pagination,
	)

	crosswalksSystem := crosswalks.New(
		db,
		frameworksSystem,
		similaritySystem,
		crosswalks.NewOracle(&runtime.Agent),
		runtime.Logger,
		runtime.Pagination,
	)

	assessmentsSystem := assessments.New(db, runtime.Logger, runtime.Pagination)
	artifactsSystem := artifacts.New(db, runtime.Logger, runtime.Pagination)

	interviewsSystem := interviews.New(
		db,
		clustersSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	scoringSystem := scoring.New(
		db,
		frameworksSystem,
		assessmentsSystem,
		artifactsSystem,
		interviewsSystem,
		crosswalksSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	deviationsSystem := deviations.New(
		db,
		frameworksSystem,
		assessmentsSystem,
		scoringSystem,
		runtime.Risk,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Frameworks:  frameworksSystem,
		Embeddings:  embeddingsSystem,
		Similarity:  similaritySystem,
		Clusters:    clustersSystem,
		Crosswalks:  crosswalksSystem,
		Assessments: assessmentsSystem,
		Artifacts:   artifactsSystem,
		Interviews:  interviewsSystem,
		Scoring:     scoringSystem,
		Deviations:  deviationsSystem,
	}
}
