package dto

import "time"

// ==================== 商品列表 ====================

// ListProductsRequest 商品列表请求
type ListProductsRequest struct {
	Keyword    string `form:"keyword"` // 搜索：名称、SKU
	SellerID   int64  `form:"seller_id"`
	CategoryID int64  `form:"category_id"`
	Motif      string `form:"motif"`
	Material   string `form:"material"`
	SortBy     string `form:"sort_by"` // created_at, name
	SortDesc   bool   `form:"sort_desc,default=true"`
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=20"`
}

// ListProductsResponse 商品列表响应
type ListProductsResponse struct {
	Total int64           `json:"total"`
	List  []ProductListVO `json:"list"`
}

// ProductListVO 商品列表项
type ProductListVO struct {
	ID              int64     `json:"id"`
	SellerID        int64     `json:"seller_id"`
	SKU             string    `json:"sku"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	OriginRegion    string    `json:"origin_region,omitempty"`
	Motifs          []string  `json:"motifs"`
	Materials       []string  `json:"materials"`
	PrimaryImageURL string    `json:"primary_image_url,omitempty"`
	MinPrice        float64   `json:"min_price"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// ==================== 商品详情 ====================

// ProductDetailResponse 商品详情响应
type ProductDetailResponse struct {
	Product    *ProductVO  `json:"product"`
	Variants   []VariantVO `json:"variants"`
	Categories []CategoryVO `json:"categories"`
}

// ProductVO 商品视图对象
type ProductVO struct {
	ID                int64                  `json:"id"`
	SellerID          int64                  `json:"seller_id"`
	SKU               string                 `json:"sku"`
	Slug              string                 `json:"slug"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description,omitempty"`
	CultureStory      string                 `json:"culture_story,omitempty"`
	CareGuide         string                 `json:"care_guide,omitempty"`
	OriginRegion      string                 `json:"origin_region,omitempty"`
	Attributes        map[string]interface{} `json:"attributes,omitempty"`
	Motifs            []string               `json:"motifs"`
	Materials         []string               `json:"materials"`
	PrimaryImageURL   string                 `json:"primary_image_url,omitempty"`
	Images            []string               `json:"images,omitempty"`
	HSCode            string                 `json:"hs_code,omitempty"`
	MadeInCountryCode string                 `json:"made_in_country_code,omitempty"`
	Active            bool                   `json:"active"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// VariantVO 规格视图对象
type VariantVO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	SKU         string  `json:"sku"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	WeightGrams int     `json:"weight_grams,omitempty"`
}

// CategoryVO 分类视图对象
type CategoryVO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ==================== 创建商品 ====================

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	SKU               string                 `json:"sku" binding:"required"`
	Slug              string                 `json:"slug" binding:"required"`
	Name              string                 `json:"name" binding:"required"`
	Description       string                 `json:"description"`
	CultureStory      string                 `json:"culture_story"`
	CareGuide         string                 `json:"care_guide"`
	OriginRegion      string                 `json:"origin_region"`
	Attributes        map[string]interface{} `json:"attributes"`
	Motifs            []string               `json:"motifs"`
	Materials         []string               `json:"materials"`
	PrimaryImageURL   string                 `json:"primary_image_url"`
	Images            []string               `json:"images"`
	HSCode            string                 `json:"hs_code"`
	MadeInCountryCode string                 `json:"made_in_country_code"`
	CategoryIDs       []int64                `json:"category_ids"`
	Variants          []CreateVariantRequest `json:"variants" binding:"required,min=1,dive"`
}

// CreateVariantRequest 创建规格请求
type CreateVariantRequest struct {
	Name        string  `json:"name" binding:"required"`
	SKU         string  `json:"sku" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	WeightGrams int     `json:"weight_grams"`
}

// ==================== 更新商品 ====================

// UpdateProductRequest 更新商品请求，仅更新非空字段
type UpdateProductRequest struct {
	Name              *string                 `json:"name"`
	Description       *string                 `json:"description"`
	CultureStory      *string                 `json:"culture_story"`
	CareGuide         *string                 `json:"care_guide"`
	OriginRegion      *string                 `json:"origin_region"`
	Attributes        *map[string]interface{} `json:"attributes"`
	Motifs            *[]string               `json:"motifs"`
	Materials         *[]string               `json:"materials"`
	PrimaryImageURL   *string                 `json:"primary_image_url"`
	Images            *[]string               `json:"images"`
	HSCode            *string                 `json:"hs_code"`
	MadeInCountryCode *string                 `json:"made_in_country_code"`
	Active            *bool                   `json:"active"`
	CategoryIDs       *[]int64                `json:"category_ids"`
}
