// Package users stores profile records. Two implementations share the
// Repository contract: PostgresRepository for production and
// MemoryRepository for local runs and tests.
package users

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// Repository persists profiles. Implementations report a missing id as
// common.ErrorNotFound and a duplicate email as common.ErrorAlreadyExists.
type Repository interface {
	Create(ctx context.Context, fields models.UserFields) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateByID(ctx context.Context, id string, fields models.UserFields) error
}

// newID is a seam for tests.
var newID = common.NewID
