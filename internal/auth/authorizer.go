package auth

import (
	"context"
	"encoding/base64"
	"strings"

	"go-flight-reservation/internal/model"
	apperrors "go-flight-reservation/pkg/app_errors"
)

// IdentityStore 身分查詢介面，由 customer repository 滿足
type IdentityStore interface {
	FindByID(ctx context.Context, id int) (*model.Customer, error)
}

// Authorizer 授權檢查：驗證請求宣稱的身分確實是目標顧客本人。
// 在每個變動操作、以及讀取他人私有資料之前呼叫。
// 憑證格式錯誤一律視為未授權 (fail closed)，不讓錯誤穿透這個邊界。
type Authorizer interface {
	Authorize(ctx context.Context, credentials string, customerID int) error
}

type AuthorizerImpl struct {
	store IdentityStore
	jwt   *JWTManager
}

func NewAuthorizer(store IdentityStore, jwt *JWTManager) Authorizer {
	return &AuthorizerImpl{
		store: store,
		jwt:   jwt,
	}
}

func (a *AuthorizerImpl) Authorize(ctx context.Context, credentials string, customerID int) error {
	if customerID <= 0 {
		return apperrors.ErrInvalidInput
	}

	scheme, payload, found := strings.Cut(strings.TrimSpace(credentials), " ")
	if !found || payload == "" {
		return apperrors.ErrUnauthorized
	}

	switch strings.ToLower(scheme) {
	case "basic":
		return a.authorizeBasic(ctx, payload, customerID)
	case "bearer":
		return a.authorizeBearer(payload, customerID)
	default:
		return apperrors.ErrUnauthorized
	}
}

// authorizeBasic 比對 base64(email:password) 與目標顧客的儲存身分
func (a *AuthorizerImpl) authorizeBasic(ctx context.Context, payload string, customerID int) error {
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return apperrors.ErrUnauthorized
	}

	email, password, found := strings.Cut(string(decoded), ":")
	if !found || email == "" {
		return apperrors.ErrUnauthorized
	}

	customer, err := a.store.FindByID(ctx, customerID)
	if err != nil {
		// unknown customer is indistinguishable from wrong credentials
		return apperrors.ErrUnauthorized
	}

	if customer.Email != email || !VerifyPassword(customer.PasswordHash, password) {
		return apperrors.ErrUnauthorized
	}

	return nil
}

func (a *AuthorizerImpl) authorizeBearer(payload string, customerID int) error {
	subject, err := a.jwt.Parse(payload)
	if err != nil || subject != customerID {
		return apperrors.ErrUnauthorized
	}
	return nil
}
