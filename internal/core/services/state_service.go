package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
)

// StateService mediates access to the stored application document.
type StateService struct {
	stateRepo ports.StateRepository
}

// NewStateService creates the service.
func NewStateService(stateRepo ports.StateRepository) *StateService {
	return &StateService{stateRepo: stateRepo}
}

var _ ports.StateSvcFacade = (*StateService)(nil)

// GetState returns the stored document for the key.
func (s *StateService) GetState(ctx context.Context, key string) (*ports.AppState, error) {
	state, err := s.stateRepo.Find(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get state in service: %w", err)
	}
	return state, nil
}

// SaveState validates and overwrites the stored document, returning the
// server write timestamp. The document is whole-replaced; there is no
// field-level merge.
func (s *StateService) SaveState(ctx context.Context, key string, data json.RawMessage) (time.Time, error) {
	if len(data) == 0 || string(data) == "null" {
		return time.Time{}, fmt.Errorf("%w: missing data", apperrors.ErrValidation)
	}
	if !json.Valid(data) {
		return time.Time{}, fmt.Errorf("%w: data is not valid JSON", apperrors.ErrValidation)
	}
	updatedAt, err := s.stateRepo.Upsert(ctx, key, data, domain.SchemaVersion)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to save state in service: %w", err)
	}
	return updatedAt, nil
}

// DeleteState removes the stored document. Admin-only at the handler layer.
func (s *StateService) DeleteState(ctx context.Context, key string) error {
	if err := s.stateRepo.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete state in service: %w", err)
	}
	return nil
}

// ResolveAutologin maps a one-time access token to exactly one worker
// identity inside the stored document.
func (s *StateService) ResolveAutologin(ctx context.Context, key, token string) (*ports.AutologinIdentity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", apperrors.ErrValidation)
	}
	var data domain.AppData
	state, err := s.stateRepo.Find(ctx, key)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		// First run: no document pushed yet, resolve against the seed roster.
		data = domain.DefaultAppData()
	case err != nil:
		return nil, fmt.Errorf("failed to load state for autologin: %w", err)
	default:
		if data, err = domain.DecodeDocument(state.Data); err != nil {
			return nil, fmt.Errorf("failed to decode state for autologin: %w", err)
		}
	}
	for i := range data.Organizations {
		org := &data.Organizations[i]
		if emp := org.EmployeeByToken(token); emp != nil {
			return &ports.AutologinIdentity{
				OrgID:      org.ID,
				EmployeeID: emp.ID,
				Name:       emp.Name,
				Role:       emp.Role,
				CanPunch:   emp.CanPunch,
			}, nil
		}
	}
	return nil, apperrors.ErrUnauthorized
}
