package users

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// MemoryRepository keeps profiles in process memory. Emails are unique by
// exact value, like the UNIQUE column of the Postgres schema.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

// cloneFields detaches the strings from whatever buffer the caller owns.
func cloneFields(f models.UserFields) models.UserFields {
	return models.UserFields{
		Name:     strings.Clone(f.Name),
		Email:    strings.Clone(f.Email),
		Hobbies:  strings.Clone(f.Hobbies),
		Location: strings.Clone(f.Location),
	}
}

func (r *MemoryRepository) Create(_ context.Context, fields models.UserFields) (*models.User, error) {
	fields = cloneFields(fields)
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[fields.Email]; ok {
		return nil, fmt.Errorf("%w: email", common.ErrorAlreadyExists)
	}
	if _, ok := r.byID[id]; ok {
		return nil, fmt.Errorf("%w: id", common.ErrorAlreadyExists)
	}

	u := models.User{ID: id, UserFields: fields}
	r.byID[id] = u
	r.byEmail[fields.Email] = id

	return &u, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) UpdateByID(_ context.Context, id string, fields models.UserFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	fields = cloneFields(fields)

	newKey := fields.Email
	if owner, taken := r.byEmail[newKey]; taken && owner != id {
		return fmt.Errorf("%w: email", common.ErrorAlreadyExists)
	}

	delete(r.byEmail, cur.Email)
	r.byEmail[newKey] = cur.ID
	r.byID[cur.ID] = models.User{ID: cur.ID, UserFields: fields}

	return nil
}

// Len reports the number of stored profiles.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
