package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/pontovivo/ponto_vivo_app/internal/apperrors"
	"github.com/pontovivo/ponto_vivo_app/internal/core/domain"
	"github.com/pontovivo/ponto_vivo_app/internal/core/ports"
	"github.com/pontovivo/ponto_vivo_app/internal/core/services"
)

// --- Mock StateRepository ---
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Find(ctx context.Context, key string) (*ports.AppState, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.AppState), args.Error(1)
}

func (m *MockStateRepository) Upsert(ctx context.Context, key string, data json.RawMessage, schemaVersion int) (time.Time, error) {
	args := m.Called(ctx, key, data, schemaVersion)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockStateRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var _ ports.StateRepository = (*MockStateRepository)(nil)

// defaultDocumentJSON serializes the seed document the way a client would
// push it.
func defaultDocumentJSON() json.RawMessage {
	raw, _ := json.Marshal(domain.DefaultAppData())
	return raw
}

// --- Test Suite ---
type StateServiceTestSuite struct {
	suite.Suite
	mockRepo *MockStateRepository
	service  ports.StateSvcFacade
}

func (suite *StateServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockStateRepository)
	suite.service = services.NewStateService(suite.mockRepo)
}

// --- Test Cases ---

func (suite *StateServiceTestSuite) TestGetState_Success() {
	ctx := context.Background()
	expected := &ports.AppState{ID: domain.StateKey, Data: defaultDocumentJSON(), UpdatedAt: time.Now(), SchemaVersion: domain.SchemaVersion}

	suite.mockRepo.On("Find", ctx, domain.StateKey).Return(expected, nil).Once()

	state, err := suite.service.GetState(ctx, domain.StateKey)

	suite.Require().NoError(err)
	suite.Equal(expected, state)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StateServiceTestSuite) TestGetState_NotFound() {
	ctx := context.Background()

	suite.mockRepo.On("Find", ctx, domain.StateKey).Return(nil, apperrors.ErrNotFound).Once()

	state, err := suite.service.GetState(ctx, domain.StateKey)

	suite.Require().Error(err)
	suite.Nil(state)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StateServiceTestSuite) TestSaveState_Success() {
	ctx := context.Background()
	data := defaultDocumentJSON()
	stamp := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	suite.mockRepo.On("Upsert", ctx, domain.StateKey, data, domain.SchemaVersion).Return(stamp, nil).Once()

	updatedAt, err := suite.service.SaveState(ctx, domain.StateKey, data)

	suite.Require().NoError(err)
	suite.Equal(stamp, updatedAt)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StateServiceTestSuite) TestSaveState_RejectsEmptyAndNull() {
	ctx := context.Background()

	for _, data := range []json.RawMessage{nil, json.RawMessage(""), json.RawMessage("null")} {
		_, err := suite.service.SaveState(ctx, domain.StateKey, data)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}
	suite.mockRepo.AssertNotCalled(suite.T(), "Upsert")
}

func (suite *StateServiceTestSuite) TestSaveState_RejectsInvalidJSON() {
	ctx := context.Background()

	_, err := suite.service.SaveState(ctx, domain.StateKey, json.RawMessage(`{"broken":`))

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "Upsert")
}

func (suite *StateServiceTestSuite) TestSaveState_RepoError() {
	ctx := context.Background()
	data := defaultDocumentJSON()
	expectedErr := assert.AnError

	suite.mockRepo.On("Upsert", ctx, domain.StateKey, data, domain.SchemaVersion).Return(time.Time{}, expectedErr).Once()

	_, err := suite.service.SaveState(ctx, domain.StateKey, data)

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StateServiceTestSuite) TestDeleteState_Success() {
	ctx := context.Background()

	suite.mockRepo.On("Delete", ctx, domain.StateKey).Return(nil).Once()

	suite.Require().NoError(suite.service.DeleteState(ctx, domain.StateKey))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StateServiceTestSuite) TestDeleteState_NotFound() {
	ctx := context.Background()

	suite.mockRepo.On("Delete", ctx, domain.StateKey).Return(apperrors.ErrNotFound).Once()

	err := suite.service.DeleteState(ctx, domain.StateKey)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StateServiceTestSuite) TestResolveAutologin_Success() {
	ctx := context.Background()
	state := &ports.AppState{ID: domain.StateKey, Data: defaultDocumentJSON(), UpdatedAt: time.Now()}

	suite.mockRepo.On("Find", ctx, domain.StateKey).Return(state, nil).Once()

	identity, err := suite.service.ResolveAutologin(ctx, domain.StateKey, "ayra-2026")

	suite.Require().NoError(err)
	suite.Require().NotNil(identity)
	suite.Equal("org-principal", identity.OrgID)
	suite.Equal("ayra", identity.EmployeeID)
	suite.Equal(domain.RoleStaff, identity.Role)
	suite.True(identity.CanPunch)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StateServiceTestSuite) TestResolveAutologin_UnknownToken() {
	ctx := context.Background()
	state := &ports.AppState{ID: domain.StateKey, Data: defaultDocumentJSON(), UpdatedAt: time.Now()}

	suite.mockRepo.On("Find", ctx, domain.StateKey).Return(state, nil).Once()

	identity, err := suite.service.ResolveAutologin(ctx, domain.StateKey, "token-inexistente")

	suite.Require().Error(err)
	suite.Nil(identity)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *StateServiceTestSuite) TestResolveAutologin_MissingToken() {
	ctx := context.Background()

	identity, err := suite.service.ResolveAutologin(ctx, domain.StateKey, "")

	suite.Nil(identity)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "Find")
}

func (suite *StateServiceTestSuite) TestResolveAutologin_FirstRunUsesSeedRoster() {
	ctx := context.Background()

	suite.mockRepo.On("Find", ctx, domain.StateKey).Return(nil, apperrors.ErrNotFound).Once()

	identity, err := suite.service.ResolveAutologin(ctx, domain.StateKey, "ayra-2026")

	suite.Require().NoError(err)
	suite.Require().NotNil(identity)
	suite.Equal("ayra", identity.EmployeeID)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Run Suite ---
func TestStateService(t *testing.T) {
	suite.Run(t, new(StateServiceTestSuite))
}
