package model

// Brand 品牌
type Brand struct {
	BaseModel
	Name    string `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Slug    string `gorm:"size:255;index" json:"slug"`
	LogoURL string `gorm:"size:500" json:"logo_url,omitempty"`
}

func (Brand) TableName() string {
	return "brands"
}
