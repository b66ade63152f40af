package repository

import (
	"context"

	"github.com/AnggaPuspa/RestApiBatika/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// ProductFilter 商品过滤条件
type ProductFilter struct {
	Keyword    string // 名称/描述/SKU 模糊匹配
	SellerID   int64
	CategoryID int64
	Motif      string
	Material   string
	Active     *bool
	SortBy     string // created_at / name
	SortDesc   bool
	Page       int
	PageSize   int
}

// ==================== ProductRepository 商品仓库 ====================

// ProductRepository 商品仓库接口
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByIDWithRelations(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	Featured(ctx context.Context, limit int) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error
	Delete(ctx context.Context, id int64) error
	SKUExists(ctx context.Context, sku string, excludeID int64) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)

	// 规格
	GetVariantsByIDs(ctx context.Context, ids []int64) ([]model.ProductVariant, error)

	// 分类
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoriesByIDs(ctx context.Context, ids []int64) ([]model.Category, error)
}

// ==================== 实现 ====================

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	// 变体、分类关联随商品在同一事务内写入
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByIDWithRelations(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Seller.User").
		Preload("Categories").
		Preload("Variants").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", model.ReviewStatusApproved).
				Order("created_at DESC").Limit(20)
		}).
		Preload("Reviews.User").
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Keyword != "" {
		keyword := "%" + filter.Keyword + "%"
		db = db.Where("name LIKE ? OR description LIKE ? OR sku LIKE ?", keyword, keyword, keyword)
	}
	if filter.SellerID > 0 {
		db = db.Where("seller_id = ?", filter.SellerID)
	}
	if filter.CategoryID > 0 {
		db = db.Where("id IN (?)", r.db.Table("product_categories").
			Select("product_id").Where("category_id = ?", filter.CategoryID))
	}
	if filter.Motif != "" {
		db = db.Where("? = ANY(motifs)", filter.Motif)
	}
	if filter.Material != "" {
		db = db.Where("? = ANY(materials)", filter.Material)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
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

	sortBy := filter.SortBy
	switch sortBy {
	case "name", "created_at":
	default:
		sortBy = "created_at"
	}
	order := sortBy
	if filter.SortDesc {
		order += " DESC"
	}

	err := db.
		Preload("Seller").
		Preload("Categories").
		Preload("Variants").
		Order(order).
		Limit(filter.PageSize).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

func (r *productRepository) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 8
	}
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Seller").
		Preload("Categories").
		Preload("Variants").
		Where("active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepository) ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error {
	return r.db.WithContext(ctx).Model(product).Association("Categories").Replace(categories)
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepository) SKUExists(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Product{}).Where("sku = ?", sku)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *productRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Product{}).Where("slug = ?", slug)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *productRepository) GetVariantsByIDs(ctx context.Context, ids []int64) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("id IN ?", ids).
		Find(&variants).Error
	return variants, err
}

func (r *productRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *productRepository) GetCategoriesByIDs(ctx context.Context, ids []int64) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}
