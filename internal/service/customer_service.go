package service

import (
	"context"
	"errors"

	"go-flight-reservation/internal/auth"
	"go-flight-reservation/internal/ledger"
	"go-flight-reservation/internal/model"
	"go-flight-reservation/internal/repository"
	apperrors "go-flight-reservation/pkg/app_errors"
)

type CustomerService interface {
	Register(ctx context.Context, req model.RegisterCustomerRequest) (*model.Customer, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	// GetTokens 讀取他人餘額屬私有資料，需通過授權檢查
	GetTokens(ctx context.Context, customerID int, credentials string) (int, error)
	Redeem(ctx context.Context, customerID int, amount int, credentials string) (int, error)
}

type CustomerServiceImpl struct {
	repo       repository.CustomerRepository
	tokens     ledger.TokenLedger
	authorizer auth.Authorizer
	jwt        *auth.JWTManager
	bcryptCost int
}

func NewCustomerService(
	repo repository.CustomerRepository,
	tokens ledger.TokenLedger,
	authorizer auth.Authorizer,
	jwt *auth.JWTManager,
	bcryptCost int,
) CustomerService {
	return &CustomerServiceImpl{
		repo:       repo,
		tokens:     tokens,
		authorizer: authorizer,
		jwt:        jwt,
		bcryptCost: bcryptCost,
	}
}

func (s *CustomerServiceImpl) Register(ctx context.Context, req model.RegisterCustomerRequest) (*model.Customer, error) {
	if !model.IsAlpha(req.FirstName) || !model.IsAlpha(req.LastName) {
		return nil, apperrors.ErrInvalidInput
	}
	if !model.IsValidEmailAddress(req.Email) {
		return nil, apperrors.ErrInvalidInput
	}
	if !model.IsValidPassword(req.Password) {
		return nil, apperrors.ErrInvalidInput
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &model.Customer{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
	})
}

func (s *CustomerServiceImpl) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if !model.IsValidEmailAddress(req.Email) {
		return nil, apperrors.ErrInvalidInput
	}

	customer, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrCustomerNotFound) {
			// 不洩漏 email 是否存在
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if !auth.VerifyPassword(customer.PasswordHash, req.Password) {
		return nil, apperrors.ErrUnauthorized
	}

	token, err := s.jwt.Issue(customer.ID, customer.Email)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Customer: customer,
		Token:    token,
	}, nil
}

func (s *CustomerServiceImpl) GetTokens(ctx context.Context, customerID int, credentials string) (int, error) {
	if err := s.authorizer.Authorize(ctx, credentials, customerID); err != nil {
		return 0, err
	}
	return s.tokens.Balance(ctx, customerID)
}

func (s *CustomerServiceImpl) Redeem(ctx context.Context, customerID int, amount int, credentials string) (int, error) {
	if err := s.authorizer.Authorize(ctx, credentials, customerID); err != nil {
		return 0, err
	}
	return s.tokens.Redeem(ctx, customerID, amount)
}
