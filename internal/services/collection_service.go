package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sitecms/internal/common"
	"sitecms/internal/models"
	"sitecms/internal/repositories"
)

const (
	CollectionActionSave   = "save"
	CollectionActionDelete = "delete"
)

type CollectionService interface {
	// List returns the collection's items newest first, each with its id merged in.
	List(ctx context.Context, tenantID, collectionName string) ([]models.JSONObject, error)
	Save(ctx context.Context, tenantID, collectionName string, item map[string]any) (string, error)
	Delete(ctx context.Context, tenantID, collectionName, id string) error
	// Apply runs a save or delete action and returns the affected id.
	Apply(ctx context.Context, tenantID, action, collectionName string, item map[string]any) (string, error)
}

type collectionService struct {
	collectionRepo repositories.CollectionRepository
}

func NewCollectionService(collectionRepo repositories.CollectionRepository) CollectionService {
	return &collectionService{collectionRepo: collectionRepo}
}

func (s *collectionService) List(ctx context.Context, tenantID, collectionName string) ([]models.JSONObject, error) {
	if err := common.ValidateRequiredString(collectionName, "collection name"); err != nil {
		return nil, err
	}
	items, err := s.collectionRepo.List(ctx, tenantID, collectionName)
	if err != nil {
		return nil, err
	}
	out := make([]models.JSONObject, 0, len(items))
	for _, item := range items {
		out = append(out, item.Flatten())
	}
	return out, nil
}

func (s *collectionService) Save(ctx context.Context, tenantID, collectionName string, item map[string]any) (string, error) {
	if err := common.ValidateRequiredString(collectionName, "collection name"); err != nil {
		return "", err
	}
	if item == nil {
		return "", common.NewValidationError("item", "Item is required for save")
	}

	id := itemID(item)
	if id == "" {
		id = uuid.NewString()
	}

	record := &models.CollectionItem{
		ID:             id,
		TenantID:       tenantID,
		CollectionName: collectionName,
		Data:           models.JSONObject(item),
	}
	if err := s.collectionRepo.Save(ctx, record); err != nil {
		return "", err
	}
	return id, nil
}

func (s *collectionService) Delete(ctx context.Context, tenantID, collectionName, id string) error {
	if err := common.ValidateRequiredString(collectionName, "collection name"); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return common.NewValidationError("id", "Item ID is required for delete")
	}
	return s.collectionRepo.Delete(ctx, tenantID, collectionName, id)
}

func (s *collectionService) Apply(ctx context.Context, tenantID, action, collectionName string, item map[string]any) (string, error) {
	switch action {
	case CollectionActionSave:
		return s.Save(ctx, tenantID, collectionName, item)
	case CollectionActionDelete:
		id := itemID(item)
		if err := s.Delete(ctx, tenantID, collectionName, id); err != nil {
			return "", err
		}
		return id, nil
	default:
		return "", common.NewValidationError("action", "Invalid action")
	}
}

// itemID reads item.id, accepting numbers as well as strings.
func itemID(item map[string]any) string {
	raw, ok := item["id"]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	str, err := SettingString(raw)
	if err != nil {
		return fmt.Sprint(raw)
	}
	return str
}
