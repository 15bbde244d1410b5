package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// AuthService authenticates back-office admins. Admin accounts live
// inside the stored document, so authentication reads the same row the
// state endpoints serve.
type AuthService struct {
	stateRepo ports.StateRepository
	jwtSecret string
	jwtExpiry time.Duration
	jwtIssuer string
	clock     ports.Clock
}

// NewAuthService creates the service.
func NewAuthService(stateRepo ports.StateRepository, jwtSecret string, jwtExpiry time.Duration, jwtIssuer string, clock ports.Clock) *AuthService {
	if clock == nil {
		clock = ports.RealClock{}
	}
	return &AuthService{
		stateRepo: stateRepo,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		jwtIssuer: jwtIssuer,
		clock:     clock,
	}
}

var _ ports.AuthSvcFacade = (*AuthService)(nil)

// Login verifies the admin credentials and returns a signed session token
// plus the matched account.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: missing email or password", apperrors.ErrValidation)
	}

	admin, err := s.findAdmin(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", nil, apperrors.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}

	token, err := s.issueToken(admin.ID)
	if err != nil {
		return "", nil, err
	}
	return token, admin, nil
}

func (s *AuthService) findAdmin(ctx context.Context, email string) (*domain.AdminUser, error) {
	state, err := s.stateRepo.Find(ctx, domain.StateKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// First run: the document has not been pushed yet, so the seed
			// admin accounts are the only identities.
			return matchAdmin(domain.DefaultAdminUsers(), email)
		}
		return nil, fmt.Errorf("failed to load state for login: %w", err)
	}
	data, err := domain.DecodeDocument(state.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode state for login: %w", err)
	}
	return matchAdmin(data.AdminUsers, email)
}

func matchAdmin(admins []domain.AdminUser, email string) (*domain.AdminUser, error) {
	for i := range admins {
		if strings.ToLower(admins[i].Email) == email {
			return &admins[i], nil
		}
	}
	return nil, apperrors.ErrUnauthorized
}

func (s *AuthService) issueToken(adminID string) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   adminID,
		Issuer:    s.jwtIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}
