package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/namisapo/minna-diary-backend/internal/cache"
	"github.com/namisapo/minna-diary-backend/internal/models"
	"gorm.io/gorm"
)

var ErrSettingValueRequired = errors.New("setting value is required")

// SettingsService reads and writes the global key/value toggles. Reads go
// through the redis cache; every write invalidates it.
type SettingsService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewSettingsService(db *gorm.DB, c *cache.Cache) *SettingsService {
	return &SettingsService{db: db, cache: c}
}

// GetAll returns the settings as a typed map.
func (s *SettingsService) GetAll(ctx context.Context) (map[string]interface{}, error) {
	var cached map[string]interface{}
	if s.cache.GetSettings(ctx, &cached) {
		return cached, nil
	}

	var settings []models.SystemSetting
	if err := s.db.WithContext(ctx).Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]interface{})
	for _, setting := range settings {
		var value interface{}
		switch setting.Type {
		case "bool":
			value, _ = strconv.ParseBool(setting.Value)
		case "int":
			value, _ = strconv.Atoi(setting.Value)
		default:
			value = setting.Value
		}
		result[setting.Key] = value
	}

	s.cache.SetSettings(ctx, result)
	return result, nil
}

// Bool returns a boolean setting, defaulting to true when the row is
// missing or unreadable (matches the client's permissive defaults).
func (s *SettingsService) Bool(ctx context.Context, key string) bool {
	all, err := s.GetAll(ctx)
	if err != nil {
		slog.Error("failed to read system settings", "key", key, "error", err)
		return true
	}
	if v, ok := all[key].(bool); ok {
		return v
	}
	return true
}

// Set upserts a setting and invalidates the cache.
func (s *SettingsService) Set(ctx context.Context, key, value, valueType string) (*models.SystemSetting, error) {
	if value == "" {
		return nil, ErrSettingValueRequired
	}
	if valueType == "" {
		valueType = "string"
	}

	var setting models.SystemSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.SystemSetting{Key: key, Value: value, Type: valueType}
		if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return nil, fmt.Errorf("failed to create setting: %w", err)
		}
	} else if err != nil {
		return nil, err
	} else {
		setting.Value = value
		setting.Type = valueType
		if err := s.db.WithContext(ctx).Save(&setting).Error; err != nil {
			return nil, fmt.Errorf("failed to update setting: %w", err)
		}
	}

	s.cache.InvalidateSettings(ctx)
	return &setting, nil
}

// SeedDefaults creates the known settings when missing.
func (s *SettingsService) SeedDefaults() error {
	defaults := []models.SystemSetting{
		{Key: models.SettingAllowNewRegistration, Value: "true", Type: "bool"},
		{Key: models.SettingAllowAnonymousPosts, Value: "true", Type: "bool"},
		{Key: models.SettingMaintenanceMode, Value: "false", Type: "bool"},
	}

	for _, def := range defaults {
		var existing models.SystemSetting
		err := s.db.Where("key = ?", def.Key).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := s.db.Create(&def).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}
