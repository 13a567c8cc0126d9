package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	repo "app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// シフト1回分でトークンが切れる想定。
const accessTokenTTL = 12 * time.Hour

type AuthUsecase struct {
	staffRepo repo.StaffRepository
	jwtSecret []byte
}

// DI
func NewAuthUsecase(staffRepo repo.StaffRepository, jwtSecret string) *AuthUsecase {
	return &AuthUsecase{staffRepo: staffRepo, jwtSecret: []byte(jwtSecret)}
}

type LoginInput struct {
	Email    string
	Password string
}

type StaffDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type LoginOutput struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int      `json:"expires_in"`
	Staff       StaffDTO `json:"staff"`
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	s, err := u.staffRepo.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		//存在有無を漏らさない
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !s.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(s.ID, 10),
		"role": string(s.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(accessTokenTTL).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(u.jwtSecret)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "token error")
	}

	return LoginOutput{
		AccessToken: signed,
		ExpiresIn:   int(accessTokenTTL.Seconds()),
		Staff: StaffDTO{
			ID:    s.ID,
			Email: s.Email,
			Name:  s.Name,
			Role:  string(s.Role),
		},
	}, nil
}
