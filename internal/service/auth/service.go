package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hrleave/leave-backend-go/internal/domain/audit"
	"github.com/hrleave/leave-backend-go/internal/domain/auth"
	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
	"github.com/hrleave/leave-backend-go/internal/pkg/jwt"
)

type authServiceImpl struct {
	txm          database.TxManager
	users        user.UserRepository
	tokens       auth.RefreshTokenRepository
	leaveService leave.Service
	jwtService   jwt.Service
	audits       audit.Recorder
}

func NewAuthService(
	txm database.TxManager,
	users user.UserRepository,
	tokens auth.RefreshTokenRepository,
	leaveService leave.Service,
	jwtService jwt.Service,
	audits audit.Recorder,
) auth.Service {
	return &authServiceImpl{
		txm:          txm,
		users:        users,
		tokens:       tokens,
		leaveService: leaveService,
		jwtService:   jwtService,
		audits:       audits,
	}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Register implements auth.Service. The user row and the current year's
// balance ledger are created in one transaction, so a registered user
// can never be observed without balances.
func (a *authServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	role := user.RoleEmployee
	if req.Role != "" {
		role = user.Role(req.Role)
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("parse hire_date: %w", err)
	}

	if req.ManagerID != nil {
		if _, err := a.users.GetByID(ctx, *req.ManagerID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.TokenResponse{}, user.ErrManagerNotFound
			}
			return auth.TokenResponse{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("hash password: %w", err)
	}

	var created user.User
	err = a.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = a.users.Create(ctx, user.User{
			Email:        req.Email,
			PasswordHash: string(hash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         role,
			Department:   req.Department,
			ManagerID:    req.ManagerID,
			HireDate:     hireDate,
		})
		if err != nil {
			return err
		}

		return a.leaveService.InitializeBalances(ctx, created.ID, time.Now().Year())
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	a.audits.Record(ctx, audit.Entry{
		ActorID:    created.ID,
		Action:     audit.ActionUserRegistered,
		EntityType: "user",
		EntityID:   created.ID,
	})

	return a.issueTokens(ctx, created)
}

// Login implements auth.Service. Unknown email, wrong password, and a
// deactivated account are indistinguishable to the caller.
func (a *authServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	u, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, err
	}

	if !u.IsActive {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, u)
}

func (a *authServiceImpl) issueTokens(ctx context.Context, u user.User) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	var err error

	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("generate access token: %w", err)
	}

	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := a.tokens.Store(ctx, u.ID, hashToken(resp.RefreshToken), resp.RefreshTokenExpiresIn); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("store refresh token: %w", err)
	}

	resp.User = user.ToResponse(u)
	return resp, nil
}

// Me implements auth.Service.
func (a *authServiceImpl) Me(ctx context.Context, userID string) (user.UserResponse, error) {
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// RefreshToken implements auth.Service. The token must decode, must still
// be present in the server-side store, and its user must still be active.
func (a *authServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	userID, err := a.jwtService.DecodeRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	known, err := a.tokens.Exists(ctx, hashToken(req.RefreshToken))
	if err != nil {
		return auth.AccessTokenResponse{}, err
	}
	if !known {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if !u.IsActive {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("generate access token: %w", err)
	}

	return resp, nil
}

// Logout implements auth.Service. Revocation is idempotent; an already
// revoked token logs out cleanly.
func (a *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return auth.ErrInvalidToken
	}
	if _, err := a.jwtService.DecodeRefreshToken(refreshToken); err != nil {
		return auth.ErrInvalidToken
	}
	return a.tokens.Revoke(ctx, hashToken(refreshToken))
}
