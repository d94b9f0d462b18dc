package assessments

import (
	"context"

	"github.com/google/uuid"

	"github.com/concordsec/concord/pkg/pagination"
)

// System defines the public contract for assessment management.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Assessment], error)
	Find(ctx context.Context, id uuid.UUID) (*Assessment, error)
	Create(ctx context.Context, cmd CreateCommand) (*Assessment, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Assessment, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*Assessment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
