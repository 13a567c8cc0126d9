package usecase_test

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// =====================
// Staff repository mock
// =====================

type AuthStaffRepoMock struct{ mock.Mock }

func (m *AuthStaffRepoMock) FindByEmail(ctx context.Context, email string) (model.Staff, error) {
	args := m.Called(ctx, email)
	s, _ := args.Get(0).(model.Staff)
	return s, args.Error(1)
}

func (m *AuthStaffRepoMock) Create(ctx context.Context, s model.Staff) (int64, error) {
	panic("not used in AuthUsecase tests")
}

func (m *AuthStaffRepoMock) CountAll(ctx context.Context) (int64, error) {
	panic("not used in AuthUsecase tests")
}

const testJWTSecret = "test-secret"

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(h)
}

// =====================
// Login tests
// =====================

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()
	staff := new(AuthStaffRepoMock)

	// 入力メールは小文字化して照合される
	staff.On("FindByEmail", mock.Anything, "admin@pos.local").Return(model.Staff{
		ID:           1,
		Email:        "admin@pos.local",
		Name:         "Admin",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         model.RoleAdmin,
		IsActive:     true,
	}, nil)

	uc := usecase.NewAuthUsecase(staff, testJWTSecret)

	out, err := uc.Login(ctx, usecase.LoginInput{Email: " Admin@POS.local ", Password: "secret123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, out.AccessToken)
	assert.Equal(t, "ADMIN", out.Staff.Role)

	// 発行トークンはsub/roleを持ちHS256で検証できる
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(out.AccessToken, claims, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "1", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])

	staff.AssertExpectations(t)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	staff := new(AuthStaffRepoMock)

	staff.On("FindByEmail", mock.Anything, "server@pos.local").Return(model.Staff{
		ID:           2,
		Email:        "server@pos.local",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         model.RoleServer,
		IsActive:     true,
	}, nil)

	uc := usecase.NewAuthUsecase(staff, testJWTSecret)

	_, err := uc.Login(ctx, usecase.LoginInput{Email: "server@pos.local", Password: "wrong"})
	assertErrContains(t, err, "unauthorized")
}

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	staff := new(AuthStaffRepoMock)

	staff.On("FindByEmail", mock.Anything, "nobody@pos.local").Return(model.Staff{}, repo.ErrNotFound)

	uc := usecase.NewAuthUsecase(staff, testJWTSecret)

	// 存在しないメールもパスワード誤りと同じ応答
	_, err := uc.Login(ctx, usecase.LoginInput{Email: "nobody@pos.local", Password: "secret123"})
	assertErrContains(t, err, "unauthorized")
}

func TestAuthUsecase_Login_InactiveStaff(t *testing.T) {
	ctx := context.Background()
	staff := new(AuthStaffRepoMock)

	staff.On("FindByEmail", mock.Anything, "old@pos.local").Return(model.Staff{
		ID:           3,
		Email:        "old@pos.local",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         model.RoleServer,
		IsActive:     false,
	}, nil)

	uc := usecase.NewAuthUsecase(staff, testJWTSecret)

	_, err := uc.Login(ctx, usecase.LoginInput{Email: "old@pos.local", Password: "secret123"})
	assertErrContains(t, err, "unauthorized")
}

func TestAuthUsecase_Login_MissingFields(t *testing.T) {
	uc := usecase.NewAuthUsecase(new(AuthStaffRepoMock), testJWTSecret)

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "", Password: ""})
	assertErrContains(t, err, "email and password required")
}
