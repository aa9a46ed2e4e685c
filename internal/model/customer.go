package model

import (
	"regexp"
	"time"
)

// emailPattern 與原系統一致的 email 格式檢查
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9_+&*-]+(?:\.[a-zA-Z0-9_+&*-]+)*@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,7}$`)

var alphaPattern = regexp.MustCompile(`^[\p{L}\p{M}\s'-]+$`)

// Customer 顧客模型：Tokens 為忠誠點數餘額，只由 Token Ledger 變動
type Customer struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Tokens       int       `json:"tokens" db:"tokens"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RegisterCustomerRequest 註冊請求
type RegisterCustomerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// LoginRequest 登入請求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登入響應：附帶 JWT 供後續請求使用
type LoginResponse struct {
	Customer *Customer `json:"customer"`
	Token    string    `json:"token"`
}

// RedeemTokensRequest 兌換點數請求
type RedeemTokensRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// TokenBalanceResponse 點數餘額響應
type TokenBalanceResponse struct {
	CustomerID int `json:"customer_id"`
	Tokens     int `json:"tokens"`
}

// IsValidEmailAddress checks the address against the expected format.
func IsValidEmailAddress(email string) bool {
	return email != "" && emailPattern.MatchString(email)
}

// IsValidPassword requires at least 8 characters.
func IsValidPassword(password string) bool {
	return len(password) >= 8
}

// IsAlpha allows unicode letters, diacritics, whitespace, apostrophes and hyphens.
func IsAlpha(input string) bool {
	return input != "" && alphaPattern.MatchString(input)
}
