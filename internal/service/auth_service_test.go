package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vault-engine/internal/core/ports/mocks"
	"vault-engine/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testOperatorHash = "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"

func setupAuthService(t *testing.T, passwordHash string) (
	*AuthServiceImpl,
	*mocks.MockHashService,
	*mocks.MockTokenService,
	*gomock.Controller,
) {
	ctrl := gomock.NewController(t)
	hashSvc := mocks.NewMockHashService(ctrl)
	tokenSvc := mocks.NewMockTokenService(ctrl)

	svc := NewAuthService("operator", passwordHash, hashSvc, tokenSvc)
	return svc, hashSvc, tokenSvc, ctrl
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, hashSvc, tokenSvc, ctrl := setupAuthService(t, testOperatorHash)
	defer ctrl.Finish()

	expiry := time.Now().Add(time.Hour)
	hashSvc.EXPECT().Verify("s3cret", testOperatorHash).Return(true, nil)
	tokenSvc.EXPECT().Generate("operator").Return("jwt-token", expiry, nil)

	token, exp, err := svc.Login(context.Background(), "operator", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, hashSvc, _, ctrl := setupAuthService(t, testOperatorHash)
	defer ctrl.Finish()

	hashSvc.EXPECT().Verify("wrong", testOperatorHash).Return(false, nil)

	_, _, err := svc.Login(context.Background(), "operator", "wrong")
	assertCode(t, err, apperror.CodeInvalidCredentials)
}

func TestAuthService_Login_WrongUsername(t *testing.T) {
	svc, hashSvc, _, ctrl := setupAuthService(t, testOperatorHash)
	defer ctrl.Finish()

	// The password is still checked so timing does not reveal the username.
	hashSvc.EXPECT().Verify("s3cret", testOperatorHash).Return(true, nil)

	_, _, err := svc.Login(context.Background(), "admin", "s3cret")
	assertCode(t, err, apperror.CodeInvalidCredentials)
}

func TestAuthService_Login_Disabled(t *testing.T) {
	svc, _, _, ctrl := setupAuthService(t, "")
	defer ctrl.Finish()

	_, _, err := svc.Login(context.Background(), "operator", "anything")
	assertCode(t, err, apperror.CodeInvalidCredentials)
}

func TestAuthService_Login_BadHash(t *testing.T) {
	svc, hashSvc, _, ctrl := setupAuthService(t, "not-a-hash")
	defer ctrl.Finish()

	hashSvc.EXPECT().Verify("s3cret", "not-a-hash").Return(false, errors.New("invalid hash format"))

	_, _, err := svc.Login(context.Background(), "operator", "s3cret")
	assertCode(t, err, apperror.CodeInternal)
}
