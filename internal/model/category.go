package model

// Category 商品分类
// 两级结构：根分类（ParentID 为空）持有规格字段模板，子分类继承
type Category struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string `gorm:"size:500" json:"image_url,omitempty"`

	ParentID *int64    `gorm:"index" json:"parent_id,omitempty"`
	Parent   *Category `gorm:"foreignKey:ParentID" json:"-"`

	// 规格字段模板，仅根分类持有（jsonb）
	SpecificationFields SpecificationFields `gorm:"type:jsonb" json:"specificationFields,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// IsRoot 是否根分类
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
