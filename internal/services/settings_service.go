package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"sitecms/internal/common"
	"sitecms/internal/repositories"
)

type SettingsService interface {
	GetAll(ctx context.Context, tenantID string) (map[string]string, error)
	// SetMany stores every value as a string; keys not named are left alone.
	SetMany(ctx context.Context, tenantID string, values map[string]any) error
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
}

func NewSettingsService(settingsRepo repositories.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) GetAll(ctx context.Context, tenantID string) (map[string]string, error) {
	return s.settingsRepo.GetAll(ctx, tenantID)
}

func (s *settingsService) SetMany(ctx context.Context, tenantID string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	converted := make(map[string]string, len(values))
	for key, value := range values {
		if key == "" {
			return common.NewValidationError("key", "setting key cannot be empty")
		}
		str, err := SettingString(value)
		if err != nil {
			return common.NewValidationError(key, fmt.Sprintf("cannot store setting %q: %v", key, err))
		}
		converted[key] = str
	}
	return s.settingsRepo.SetMany(ctx, tenantID, converted)
}

// SettingString renders a decoded JSON value the way it is stored.
func SettingString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case json.Number:
		return v.String(), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
