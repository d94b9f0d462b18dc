package clusters

import (
	"context"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
)

// System defines the public contract for requirement clustering.
type System interface {
	Handler() *Handler

	// Generate runs a full clustering pass over the assessable, embedded
	// requirements of the given frameworks and persists the result.
	Generate(ctx context.Context, cmd GenerateCommand) ([]Cluster, error)

	// List returns a page of clusters matching the filters.
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Cluster], error)

	// Find returns a cluster by id.
	Find(ctx context.Context, id uuid.UUID) (*Cluster, error)

	// Members returns the requirements in a cluster with their similarity
	// to the cluster centroid.
	Members(ctx context.Context, clusterID uuid.UUID) ([]Member, error)

	// ClusterFor returns the cluster a requirement belongs to, optionally
	// restricted to one cluster type.
	ClusterFor(ctx context.Context, requirementID uuid.UUID, clusterType string) (*Cluster, error)

	// Delete removes clusters in bulk, optionally restricted to one
	// cluster type. Members cascade. Returns the number deleted.
	Delete(ctx context.Context, clusterType string) (int, error)

	// EstimateReduction reports how many interview questions clustering
	// saves over the given frameworks.
	EstimateReduction(ctx context.Context, frameworkIDs []uuid.UUID) (*ReductionEstimate, error)
}
