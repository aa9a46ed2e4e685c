package repository

import (
	"context"
	"errors"
	"time"

	"go-flight-reservation/internal/model"
	apperrors "go-flight-reservation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	FindByID(ctx context.Context, id int) (*model.Customer, error)
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)

	// ledger.TokenStore
	FetchBalance(ctx context.Context, customerID int) (int, error)
	SaveBalance(ctx context.Context, customerID int, balance int) error
}

type CustomerRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &CustomerRepositoryImpl{
		pool: pool,
	}
}

func (r *CustomerRepositoryImpl) Create(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	query := `
		INSERT INTO customers (first_name, last_name, email, password_hash, tokens)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, first_name, last_name, email, password_hash, tokens, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		customer.FirstName, customer.LastName, customer.Email, customer.PasswordHash,
	).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Tokens,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)

	if err != nil {
		// unique_violation on customers.email
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrEmailExists
		}
		return nil, err
	}

	return customer, nil
}

func (r *CustomerRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Customer, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, tokens, created_at, updated_at
		FROM customers
		WHERE id = $1
	`

	var customer model.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Tokens,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepositoryImpl) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, tokens, created_at, updated_at
		FROM customers
		WHERE email = $1
	`

	var customer model.Customer
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Tokens,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepositoryImpl) FetchBalance(ctx context.Context, customerID int) (int, error) {
	query := `
		SELECT tokens
		FROM customers
		WHERE id = $1
	`

	var tokens int
	err := r.pool.QueryRow(ctx, query, customerID).Scan(&tokens)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, apperrors.ErrCustomerNotFound
		}
		return 0, err
	}
	return tokens, nil
}

func (r *CustomerRepositoryImpl) SaveBalance(ctx context.Context, customerID int, balance int) error {
	query := `
		UPDATE customers
		SET tokens = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, balance, time.Now().UTC(), customerID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrCustomerNotFound
	}

	return nil
}
