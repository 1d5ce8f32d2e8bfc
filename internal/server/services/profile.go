// Package services contains server-side business logic. ProfileService
// sits between the HTTP handlers and the users repository.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
)

// ProfileService creates, reads and updates profiles. Inputs are expected
// to be normalized and validated already. Repository errors are wrapped with
// %w, so callers can still match common.ErrorNotFound and
// common.ErrorAlreadyExists.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewProfileService constructs a ProfileService. db may be nil for storage
// backends that do not use a database.
func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

// Register stores a new profile and returns it with its generated id.
func (s *ProfileService) Register(ctx context.Context, fields models.UserFields) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Get returns the profile with the given id.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading user %s: %w", id, err)
	}
	return u, nil
}

// Update replaces every editable field of the profile. The id is unchanged.
func (s *ProfileService) Update(ctx context.Context, id string, fields models.UserFields) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateByID(ctx, id, fields); err != nil {
		return fmt.Errorf("error updating user %s: %w", id, err)
	}
	return nil
}
