package service

import (
	"context"
	"log"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
)

const settingsCacheKey = "proviquiz-settings"

// SettingsService serves the settings singleton through the cache.
type SettingsService struct {
	settings SettingsStore
	cache    Cache
	ttl      time.Duration
}

func NewSettingsService(settings SettingsStore, cache Cache, ttl time.Duration) *SettingsService {
	return &SettingsService{settings: settings, cache: cache, ttl: ttl}
}

func (s *SettingsService) Get(ctx context.Context) (*models.SystemSettings, error) {
	if s.cache != nil {
		var cached models.SystemSettings
		if err := s.cache.GetStructCached(ctx, settingsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveStructCached(ctx, settingsCacheKey, settings, s.ttl); err != nil {
			log.Printf("Warning: failed to cache settings: %v", err)
		}
	}
	return settings, nil
}

func (s *SettingsService) Public(ctx context.Context) (*models.PublicSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	public := settings.Public()
	return &public, nil
}

func (s *SettingsService) Update(ctx context.Context, req *models.SettingsRequest) (*models.SystemSettings, error) {
	if err := invalid(invalidData, check(req)); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if req.SystemName != nil {
		settings.SystemName = *req.SystemName
	}
	if req.LogoURL != nil {
		settings.LogoURL = *req.LogoURL
	}
	if req.ExamRules != nil {
		settings.ExamRules = *req.ExamRules
	}
	if req.PassingCriteria != nil {
		settings.PassingCriteria = *req.PassingCriteria
	}
	if req.QuestionRandomization != nil {
		settings.QuestionRandomization = *req.QuestionRandomization
	}
	if req.MaintenanceMode != nil {
		settings.MaintenanceMode = *req.MaintenanceMode
	}
	if req.MaintenanceMessage != nil {
		settings.MaintenanceMessage = *req.MaintenanceMessage
	}

	saved, err := s.settings.Save(ctx, settings)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
			log.Printf("Warning: failed to invalidate settings cache: %v", err)
		}
	}
	return saved, nil
}
