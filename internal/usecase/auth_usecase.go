package usecase

import (
	"context"
	"errors"
	"strings"

	"venture-match/internal/domain/account"
	"venture-match/internal/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthUsecase interface {
	Register(ctx context.Context, in RegisterInput) (account.Account, string, string, error)
	Login(ctx context.Context, in LoginInput) (account.Account, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
}

type Auth struct {
	accounts account.Repository
	jwt      jwt.Service
}

func NewAuthUsecase(accounts account.Repository, jwtSvc jwt.Service) *Auth {
	return &Auth{accounts: accounts, jwt: jwtSvc}
}

func (u *Auth) Register(ctx context.Context, in RegisterInput) (account.Account, string, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || len(strings.TrimSpace(in.Password)) < 8 {
		return account.Account{}, "", "", ErrInvalidInput
	}

	exists, err := u.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return account.Account{}, "", "", ErrInternal
	}
	if exists {
		return account.Account{}, "", "", ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return account.Account{}, "", "", ErrInternal
	}

	a := account.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := u.accounts.Create(ctx, a); err != nil {
		return account.Account{}, "", "", ErrInternal
	}

	created, err := u.accounts.GetByID(ctx, a.ID)
	if err != nil {
		return account.Account{}, "", "", ErrInternal
	}
	return u.withTokens(sanitize(created))
}

func (u *Auth) Login(ctx context.Context, in LoginInput) (account.Account, string, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return account.Account{}, "", "", ErrInvalidCredentials
	}

	a, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, "", "", ErrInvalidCredentials
		}
		return account.Account{}, "", "", ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(in.Password)); err != nil {
		return account.Account{}, "", "", ErrInvalidCredentials
	}

	return u.withTokens(sanitize(a))
}

func (u *Auth) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", ErrUnauthorized
	}

	claims, err := u.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrRefreshTokenExpired
		}
		return "", "", ErrInvalidRefreshToken
	}
	if !u.jwt.IsRefreshToken(claims) {
		return "", "", ErrInvalidRefreshToken
	}

	a, err := u.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		return "", "", ErrInternal
	}

	access, err := u.jwt.GenerateAccessToken(a.ID, a.Email)
	if err != nil {
		return "", "", ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(a.ID)
	if err != nil {
		return "", "", ErrInternal
	}
	return access, refresh, nil
}

func (u *Auth) withTokens(a account.Account) (account.Account, string, string, error) {
	access, err := u.jwt.GenerateAccessToken(a.ID, a.Email)
	if err != nil {
		return account.Account{}, "", "", ErrInternal
	}
	refresh, err := u.jwt.GenerateRefreshToken(a.ID)
	if err != nil {
		return account.Account{}, "", "", ErrInternal
	}
	return a, access, refresh, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sanitize(a account.Account) account.Account {
	a.PasswordHash = ""
	return a
}
