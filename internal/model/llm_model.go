package model

// LLMModel is a row of static reference data describing a servable model.
// The primary key is the provider-qualified model name, matching the id
// field of OpenAI's model object.
type LLMModel struct {
	ID              string  `gorm:"primaryKey;type:varchar(255)" json:"id"`
	Object          string  `gorm:"type:varchar(50);default:'model'" json:"object"`
	Created         int64   `json:"created"`
	OwnedBy         string  `gorm:"type:varchar(255)" json:"owned_by"`
	Permission      string  `gorm:"type:text" json:"permission"`
	Root            string  `gorm:"type:varchar(255)" json:"root"`
	Parent          string  `gorm:"type:varchar(255)" json:"parent"`
	Public          bool    `gorm:"column:is_public;default:false;not null" json:"is_public"`
	Description     string  `gorm:"type:text" json:"description"`
	Strengths       string  `gorm:"type:text" json:"strengths"`
	PricePrompt     float64 `gorm:"default:0" json:"price_prompt"`
	PriceCompletion float64 `gorm:"default:0" json:"price_completion"`
}

// TableName keeps the table name aligned with the SQL schema.
func (LLMModel) TableName() string {
	return "models"
}
