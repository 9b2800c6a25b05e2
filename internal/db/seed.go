package db

import (
	"errors"
	"fmt"
	"time"

	"ollamagate/internal/model"

	"gorm.io/gorm"
)

// SeedModels inserts any of the given reference models that are not yet
// present. Existing rows are left untouched, so operators can edit them
// without a restart reverting the changes.
func SeedModels(s Service, models []model.LLMModel) error {
	db := s.GetDB()
	for i := range models {
		m := models[i]
		if m.Object == "" {
			m.Object = "model"
		}
		if m.Created == 0 {
			m.Created = time.Now().Unix()
		}

		var existing model.LLMModel
		err := db.Where("id = ?", m.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check model %s: %w", m.ID, err)
		}
		if err := db.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to seed model %s: %w", m.ID, err)
		}
	}
	return nil
}

// DefaultModels is the reference data installed on first boot against an
// empty database.
func DefaultModels() []model.LLMModel {
	return []model.LLMModel{
		{
			ID:          "llama3",
			OwnedBy:     "ollama",
			Root:        "llama3",
			Public:      true,
			Description: "General purpose chat model served locally by Ollama.",
			Strengths:   "conversation, summarization, general reasoning",
		},
		{
			ID:          "mistral",
			OwnedBy:     "ollama",
			Root:        "mistral",
			Public:      false,
			Description: "Compact instruction-following model.",
			Strengths:   "fast responses, drafting",
		},
	}
}
