package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation          = "23505"
	pgCharacterNotInRepertoire = "22021"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, fields models.UserFields) (*models.User, error) {
	id, err := newID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	query :=
		`INSERT INTO users (id, name, email, hobbies, location)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	user := &models.User{UserFields: fields}
	err = r.db.QueryRowContext(ctx, query,
		id, fields.Name, fields.Email, fields.Hobbies, fields.Location).Scan(&user.ID)

	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, name, email, hobbies, location FROM users
		 WHERE id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.Hobbies, &user.Location)

	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, fields models.UserFields) error {
	query :=
		`UPDATE users SET name = $2, email = $3, hobbies = $4, location = $5
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		id, fields.Name, fields.Email, fields.Hobbies, fields.Location)
	if err != nil {
		return mapError(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, pgErr.ConstraintName)
		case pgCharacterNotInRepertoire:
			return fmt.Errorf("%w: %s", common.ErrorValidation, pgErr.Message)
		}
	}
	return fmt.Errorf("db error: %w", err)
}
