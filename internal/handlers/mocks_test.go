package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"sitecms/internal/config"
	"sitecms/internal/models"
	"sitecms/internal/services"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) IsSetup(ctx context.Context, tenantID string) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, tenantID, username, password string) (*models.TokenResponse, error) {
	args := m.Called(ctx, tenantID, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, tenantID, username, password, clientIP string) (*models.TokenResponse, error) {
	args := m.Called(ctx, tenantID, username, password, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenResponse), args.Error(1)
}

func (m *MockAuthService) Verify(ctx context.Context, tenantID, username, password string) (bool, error) {
	args := m.Called(ctx, tenantID, username, password)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*services.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenClaims), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *services.TokenClaims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) AdminConfig() config.AdminConfig {
	args := m.Called()
	return args.Get(0).(config.AdminConfig)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetAll(ctx context.Context, tenantID string) (map[string]string, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockSettingsService) SetMany(ctx context.Context, tenantID string, values map[string]any) error {
	args := m.Called(ctx, tenantID, values)
	return args.Error(0)
}

type MockCollectionService struct {
	mock.Mock
}

func (m *MockCollectionService) List(ctx context.Context, tenantID, collectionName string) ([]models.JSONObject, error) {
	args := m.Called(ctx, tenantID, collectionName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.JSONObject), args.Error(1)
}

func (m *MockCollectionService) Save(ctx context.Context, tenantID, collectionName string, item map[string]any) (string, error) {
	args := m.Called(ctx, tenantID, collectionName, item)
	return args.String(0), args.Error(1)
}

func (m *MockCollectionService) Delete(ctx context.Context, tenantID, collectionName, id string) error {
	args := m.Called(ctx, tenantID, collectionName, id)
	return args.Error(0)
}

func (m *MockCollectionService) Apply(ctx context.Context, tenantID, action, collectionName string, item map[string]any) (string, error) {
	args := m.Called(ctx, tenantID, action, collectionName, item)
	return args.String(0), args.Error(1)
}

type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) Submit(ctx context.Context, tenantID string, payload map[string]any, clientIP string) (*models.Lead, error) {
	args := m.Called(ctx, tenantID, payload, clientIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadService) List(ctx context.Context, tenantID string, limit, offset int) ([]*models.Lead, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Lead), args.Error(1)
}

func (m *MockLeadService) Get(ctx context.Context, tenantID string, id int64) (*models.Lead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadService) RetryFailed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadService) Wait() {}

type MockJobRunner struct {
	mock.Mock
}

func (m *MockJobRunner) RunNow(name string) error {
	args := m.Called(name)
	return args.Error(0)
}

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) Upload(ctx context.Context, tenantID, filename, contentType string, size int64, reader io.Reader) (*models.MediaObject, error) {
	args := m.Called(ctx, tenantID, filename, contentType, size, reader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaObject), args.Error(1)
}

func (m *MockMediaService) URL(ctx context.Context, tenantID, key string) (string, error) {
	args := m.Called(ctx, tenantID, key)
	return args.String(0), args.Error(1)
}

func (m *MockMediaService) Delete(ctx context.Context, tenantID, key string) error {
	args := m.Called(ctx, tenantID, key)
	return args.Error(0)
}
