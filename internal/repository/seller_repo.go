package repository

import (
	"context"

	"github.com/AnggaPuspa/RestApiBatika/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// SellerFilter 卖家过滤条件
type SellerFilter struct {
	Keyword           string // 店铺名/产地模糊匹配
	VerificationLevel string
	OriginRegion      string
	Page              int
	PageSize          int
}

// ==================== SellerRepository 卖家仓库 ====================

// SellerRepository 卖家仓库接口
type SellerRepository interface {
	Create(ctx context.Context, seller *model.Seller) error
	GetByID(ctx context.Context, id int64) (*model.Seller, error)
	GetByIDWithProducts(ctx context.Context, id int64, productLimit int) (*model.Seller, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Seller, error)
	GetBySlug(ctx context.Context, slug string) (*model.Seller, error)
	List(ctx context.Context, filter SellerFilter) ([]model.Seller, int64, error)
	Update(ctx context.Context, seller *model.Seller) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	ExistsForUser(ctx context.Context, userID int64) (bool, error)
}

// ==================== 实现 ====================

type sellerRepository struct {
	db *gorm.DB
}

// NewSellerRepository 创建卖家仓库
func NewSellerRepository(db *gorm.DB) SellerRepository {
	return &sellerRepository{db: db}
}

func (r *sellerRepository) Create(ctx context.Context, seller *model.Seller) error {
	return r.db.WithContext(ctx).Create(seller).Error
}

func (r *sellerRepository) GetByID(ctx context.Context, id int64) (*model.Seller, error) {
	var seller model.Seller
	err := r.db.WithContext(ctx).Preload("User").First(&seller, id).Error
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *sellerRepository) GetByIDWithProducts(ctx context.Context, id int64, productLimit int) (*model.Seller, error) {
	if productLimit <= 0 {
		productLimit = 10
	}
	var seller model.Seller
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true).Order("created_at DESC").Limit(productLimit)
		}).
		Preload("Products.Variants").
		Preload("Products.Categories").
		First(&seller, id).Error
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *sellerRepository) GetByUserID(ctx context.Context, userID int64) (*model.Seller, error) {
	var seller model.Seller
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&seller).Error
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *sellerRepository) GetBySlug(ctx context.Context, slug string) (*model.Seller, error) {
	var seller model.Seller
	err := r.db.WithContext(ctx).Preload("User").Where("store_slug = ?", slug).First(&seller).Error
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

func (r *sellerRepository) List(ctx context.Context, filter SellerFilter) ([]model.Seller, int64, error) {
	var sellers []model.Seller
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Seller{})

	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("store_name LIKE ? OR origin_region LIKE ?", keyword, keyword)
	}
	if filter.VerificationLevel != "" {
		db = db.Where("verification_level = ?", filter.VerificationLevel)
	}
	if filter.OriginRegion != "" {
		db = db.Where("origin_region = ?", filter.OriginRegion)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := db.
		Preload("User").
		Order("created_at DESC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&sellers).Error

	return sellers, total, err
}

func (r *sellerRepository) Update(ctx context.Context, seller *model.Seller) error {
	return r.db.WithContext(ctx).Save(seller).Error
}

func (r *sellerRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Seller{}).Where("id = ?", id).Updates(fields).Error
}

func (r *sellerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Seller{}, id).Error
}

func (r *sellerRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Seller{}).Where("store_slug = ?", slug)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *sellerRepository) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Seller{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}
