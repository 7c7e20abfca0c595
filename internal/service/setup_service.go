package service

import (
	"context"
	"log"

	"prepzone/internal/cache"
	"prepzone/internal/config"
)

// SetupService manages the Gemini API key: validation, runtime install, and
// persistence so a key supplied through the API survives restarts.
type SetupService struct {
	aiConfig    *config.AIConfig
	credentials cache.CredentialCache
}

// SetupStatus reports whether generation is available.
type SetupStatus struct {
	Configured bool   `json:"configured"`
	KeyPreview string `json:"keyPreview,omitempty"`
}

// NewSetupService creates a new setup service and restores a previously
// persisted key when the environment did not provide one.
func NewSetupService(ctx context.Context, aiConfig *config.AIConfig, credentials cache.CredentialCache) *SetupService {
	s := &SetupService{
		aiConfig:    aiConfig,
		credentials: credentials,
	}
	if !aiConfig.IsEnabled() {
		key, err := credentials.GetKey(ctx)
		if err != nil {
			log.Printf("stored API key lookup failed: %v", err)
		} else if key != "" {
			if err := aiConfig.SetAPIKey(key); err != nil {
				log.Printf("stored API key rejected: %v", err)
			}
		}
	}
	return s
}

// SetKey validates, installs, and persists a new API key.
func (s *SetupService) SetKey(ctx context.Context, key string) error {
	if err := s.aiConfig.SetAPIKey(key); err != nil {
		return err
	}
	if err := s.credentials.SetKey(ctx, s.aiConfig.APIKey()); err != nil {
		// Key is live for this process; persistence failure only costs
		// survival across restarts.
		log.Printf("API key persistence failed: %v", err)
	}
	return nil
}

// Status returns the current setup state with the key redacted.
func (s *SetupService) Status() *SetupStatus {
	return &SetupStatus{
		Configured: s.aiConfig.IsEnabled(),
		KeyPreview: s.aiConfig.KeyPreview(),
	}
}
