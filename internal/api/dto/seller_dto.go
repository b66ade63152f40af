package dto

import "time"

// ==================== 开店 ====================

// CreateSellerRequest 开店请求
type CreateSellerRequest struct {
	StoreName    string   `json:"store_name" binding:"required"`
	StoreSlug    string   `json:"store_slug" binding:"required"`
	Description  string   `json:"description"`
	OriginRegion string   `json:"origin_region"`
	Badges       []string `json:"badges"`
}

// ==================== 更新店铺 ====================

// UpdateSellerRequest 更新店铺请求
type UpdateSellerRequest struct {
	StoreName    *string   `json:"store_name"`
	Description  *string   `json:"description"`
	OriginRegion *string   `json:"origin_region"`
	Badges       *[]string `json:"badges"`
}

// ==================== 店铺认证 ====================

// VerifySellerRequest 店铺认证请求
type VerifySellerRequest struct {
	VerificationLevel string                 `json:"verification_level" binding:"required"` // bronze, silver, gold
	Docs              map[string]interface{} `json:"docs"`
}

// VerificationStatusResponse 店铺认证状态响应
type VerificationStatusResponse struct {
	SellerID          int64      `json:"seller_id"`
	VerificationLevel string     `json:"verification_level"`
	IsVerified        bool       `json:"is_verified"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
}

// ==================== 店铺列表 ====================

// ListSellersRequest 店铺列表请求
type ListSellersRequest struct {
	Keyword           string `form:"keyword"` // 搜索：店铺名
	VerificationLevel string `form:"verification_level"`
	OriginRegion      string `form:"origin_region"`
	Page              int    `form:"page,default=1"`
	PageSize          int    `form:"page_size,default=20"`
}

// ListSellersResponse 店铺列表响应
type ListSellersResponse struct {
	Total int64      `json:"total"`
	List  []SellerVO `json:"list"`
}

// ==================== 店铺详情 ====================

// SellerDetailResponse 店铺详情响应
type SellerDetailResponse struct {
	Seller   *SellerVO       `json:"seller"`
	Products []ProductListVO `json:"products,omitempty"`
}

// SellerVO 店铺视图对象
type SellerVO struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	StoreName         string     `json:"store_name"`
	StoreSlug         string     `json:"store_slug"`
	Description       string     `json:"description,omitempty"`
	OriginRegion      string     `json:"origin_region,omitempty"`
	Badges            []string   `json:"badges"`
	VerificationLevel string     `json:"verification_level"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
	DefaultCurrency   string     `json:"default_currency"`
	CreatedAt         time.Time  `json:"created_at"`
}
