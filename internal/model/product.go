package model

import (
	"gorm.io/datatypes"
)

// Product 商品
type Product struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	SKU         string `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Slug        string `gorm:"size:255;index" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	// 价格与库存
	Price           float64 `gorm:"not null" json:"price"`
	Discount        int     `gorm:"default:0" json:"discount"` // 折扣百分比 0-100
	QuantityInStock int     `gorm:"default:0" json:"quantityInStock"`
	QuantitySold    int     `gorm:"default:0" json:"quantitySold"`

	// 开关
	IsActive   bool `gorm:"default:true;index" json:"isActive"`
	IsFeatured bool `gorm:"default:false;index" json:"isFeatured"`

	// 关联
	CategoryID int64     `gorm:"index;not null" json:"-"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	BrandID    int64     `gorm:"index;not null" json:"-"`
	Brand      *Brand    `gorm:"foreignKey:BrandID" json:"brand,omitempty"`

	// 规格值，键遵循所属分类的有效规格字段（jsonb）
	Specifications datatypes.JSONMap `gorm:"type:jsonb" json:"specifications,omitempty"`

	Images []ProductImage `gorm:"foreignKey:ProductID" json:"images"`
}

func (Product) TableName() string {
	return "products"
}

// FinalPrice 折后价
func (p *Product) FinalPrice() float64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return p.Price * float64(100-p.Discount) / 100
}

// MainImageURL 主图 URL，没有主图时返回空串
func (p *Product) MainImageURL() string {
	for _, img := range p.Images {
		if img.IsMain {
			return img.ImageURL
		}
	}
	return ""
}

// ProductImage 商品图片
// 约束：同一商品有且只有一张主图，由 ProductService 在事务内维护
type ProductImage struct {
	BaseModel
	ProductID int64  `gorm:"index;not null" json:"-"`
	ImageURL  string `gorm:"size:500;not null" json:"image_url"`
	AltText   string `gorm:"size:255" json:"alt_text,omitempty"`
	IsMain    bool   `gorm:"default:false" json:"is_main"`
	SortOrder int    `gorm:"default:0" json:"sortOrder"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
