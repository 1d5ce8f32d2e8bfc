// Package health aggregates readiness checks for /readyz and the gRPC
// health service.
package health

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Checker reports whether one dependency is usable.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Service runs every registered Checker. With no checkers it is always ready.
type Service struct {
	checkers []Checker
	timeout  time.Duration
}

// DefaultTimeout bounds a whole Ready call.
const DefaultTimeout = 2 * time.Second

func NewService(checkers ...Checker) *Service {
	return &Service{checkers: checkers, timeout: DefaultTimeout}
}

// Ready returns nil when all checks pass, or the joined failures.
func (s *Service) Ready(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var errs []error
	for _, c := range s.checkers {
		if err := c.Check(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// DBChecker pings a database handle.
type DBChecker struct {
	DB *sql.DB
}

func (DBChecker) Name() string { return "database" }

func (c DBChecker) Check(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}
