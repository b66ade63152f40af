package model

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== Product 商品 ====================

// Product 商品，归属于唯一卖家
type Product struct {
	BaseModel
	SellerID int64   `gorm:"index;not null"`
	Seller   *Seller `gorm:"foreignKey:SellerID"`

	// --- 基本信息 ---
	SKU         string `gorm:"size:100;uniqueIndex"` // 全局唯一
	Slug        string `gorm:"size:255;uniqueIndex"` // SEO slug，全局唯一
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`

	// --- 蜡染商品特有字段 ---
	CultureStory string `gorm:"type:text"` // 文化背景故事
	CareGuide    string `gorm:"type:text"` // 保养指南
	OriginRegion string `gorm:"size:100"`

	// --- 属性与标签 (Postgres Array / JSONB) ---
	Attributes datatypes.JSONMap `gorm:"type:jsonb"`
	Motifs     pq.StringArray    `gorm:"type:text[]"`
	Materials  pq.StringArray    `gorm:"type:text[]"`

	// --- 图片 ---
	PrimaryImageURL string         `gorm:"size:500"`
	Images          datatypes.JSON `gorm:"type:jsonb"`

	// --- 贸易信息 ---
	HSCode            string `gorm:"size:20"`
	MadeInCountryCode string `gorm:"size:5;default:ID"`

	// --- 状态 ---
	Active bool `gorm:"default:true;index"`

	// --- 关联 ---
	Categories []Category       `gorm:"many2many:product_categories"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID"`
	Reviews    []Review         `gorm:"foreignKey:ProductID"`
}

func (*Product) TableName() string {
	return "products"
}

// ==================== ProductVariant 商品变体 ====================

// ProductVariant 商品变体（尺寸/花色等），价格与库存挂在变体上
type ProductVariant struct {
	BaseModel
	ProductID int64    `gorm:"index;not null"`
	Product   *Product `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	Name        string `gorm:"size:255;not null"`
	SKU         string `gorm:"size:100;index"`
	PriceAmount int64  `gorm:"default:0"` // 分为单位
	Stock       int    `gorm:"default:0"`
	WeightGrams int    `gorm:"default:0"`
}

func (*ProductVariant) TableName() string {
	return "product_variants"
}

// GetPrice 获取单价（元）
func (v *ProductVariant) GetPrice() float64 {
	return float64(v.PriceAmount) / 100
}

// ==================== Category 商品分类 ====================

// Category 商品分类，与商品多对多
type Category struct {
	BaseModel
	Name string `gorm:"size:100;not null"`
	Slug string `gorm:"size:100;uniqueIndex"`

	Products []Product `gorm:"many2many:product_categories"`
}

func (*Category) TableName() string {
	return "categories"
}
