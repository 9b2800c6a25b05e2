package model

// ModelAccess is the authorization relation: one row grants one API key
// access to one model. The composite unique index makes duplicate grants
// a constraint violation rather than a silent no-op.
type ModelAccess struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	APIKeyID uint     `gorm:"uniqueIndex:idx_key_model;not null" json:"api_key_id"`
	ModelID  string   `gorm:"type:varchar(255);uniqueIndex:idx_key_model;not null" json:"model_id"`
	APIKey   APIKey   `gorm:"foreignKey:APIKeyID;constraint:OnDelete:CASCADE" json:"-"`
	Model    LLMModel `gorm:"foreignKey:ModelID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name aligned with the SQL schema.
func (ModelAccess) TableName() string {
	return "api_key_model_access"
}
