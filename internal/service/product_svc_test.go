package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
)

// productTestTable products 表的 sqlite 替身，数组与 JSON 列退化为 TEXT
type productTestTable struct {
	ID                int64 `gorm:"primaryKey"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         gorm.DeletedAt `gorm:"index"`
	CreatedBy         int64
	UpdatedBy         int64
	SellerID          int64 `gorm:"index"`
	SKU               string
	Slug              string
	Name              string
	Description       string
	CultureStory      string
	CareGuide         string
	OriginRegion      string
	Attributes        string
	Motifs            string
	Materials         string
	PrimaryImageURL   string
	Images            string
	HSCode            string
	MadeInCountryCode string
	Active            bool
}

func (*productTestTable) TableName() string {
	return "products"
}

func newProductTestEnv(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("连接数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.User{},
		&sellerTestTable{},
		&productTestTable{},
		&model.ProductVariant{},
		&model.Category{},
		&model.Review{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return NewProductService(repository.NewProductRepository(db), repository.NewSellerRepository(db)), db
}

// seedShop 创建用户和对应店铺
func seedShop(t *testing.T, db *gorm.DB, email string) (*model.User, *model.Seller) {
	t.Helper()
	user := seedReviewUser(t, db, email)
	seller := &model.Seller{
		UserID:    user.ID,
		StoreName: "Batik " + email,
		StoreSlug: "shop-" + email,
	}
	if err := db.Create(seller).Error; err != nil {
		t.Fatalf("创建店铺失败: %v", err)
	}
	return user, seller
}

func seedCategory(t *testing.T, db *gorm.DB, name, slug string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Slug: slug}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("创建分类失败: %v", err)
	}
	return c
}

func TestProductService_CreateProduct(t *testing.T) {
	svc, db := newProductTestEnv(t)
	ctx := context.Background()

	// 没有店铺的用户不能发布商品
	noShop := seedReviewUser(t, db, "noshop@example.com")
	if _, err := svc.CreateProduct(ctx, noShop.ID, &dto.CreateProductRequest{
		SKU: "BTK-001", Slug: "kain-parang", Name: "Kain Batik Parang",
		Variants: []dto.CreateVariantRequest{{Name: "2m", SKU: "BTK-001-2M", Price: 150, Stock: 10}},
	}); !errors.Is(err, ErrForbidden) {
		t.Errorf("无店铺发布商品应被拒绝，实际 %v", err)
	}

	user, seller := seedShop(t, db, "owner@example.com")
	cat1 := seedCategory(t, db, "Kain", "kain")
	cat2 := seedCategory(t, db, "Tulis", "tulis")

	detail, err := svc.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
		SKU:          "BTK-001",
		Slug:         "kain-parang",
		Name:         "Kain Batik Parang",
		Description:  "Batik tulis motif parang",
		CultureStory: "Motif parang melambangkan kesinambungan",
		OriginRegion: "Yogyakarta",
		Attributes:   map[string]interface{}{"teknik": "tulis"},
		Motifs:       []string{"Parang", "Kawung"},
		Materials:    []string{"Katun"},
		Images:       []string{"https://cdn.example.com/p1.jpg"},
		CategoryIDs:  []int64{cat1.ID, cat2.ID},
		Variants: []dto.CreateVariantRequest{
			{Name: "2m x 1.1m", SKU: "BTK-001-2M", Price: 150, Stock: 10, WeightGrams: 400},
			{Name: "2.5m x 1.1m", SKU: "BTK-001-25M", Price: 185.5, Stock: 4, WeightGrams: 500},
		},
	})
	if err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	if detail.Product.SellerID != seller.ID {
		t.Errorf("商品应归属店铺 %d，实际 %d", seller.ID, detail.Product.SellerID)
	}
	if detail.Product.MadeInCountryCode != "ID" {
		t.Errorf("产地国默认应为 ID，实际 %s", detail.Product.MadeInCountryCode)
	}
	if !detail.Product.Active {
		t.Error("新商品应默认在售")
	}
	if len(detail.Variants) != 2 {
		t.Fatalf("应有 2 个规格，实际 %d", len(detail.Variants))
	}
	if detail.Variants[1].Price != 185.50 {
		t.Errorf("规格价格应为 185.50，实际 %.2f", detail.Variants[1].Price)
	}
	if len(detail.Categories) != 2 {
		t.Errorf("应关联 2 个分类，实际 %d", len(detail.Categories))
	}

	// SKU 冲突
	if _, err := svc.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
		SKU: "BTK-001", Slug: "lain-lain", Name: "Lain",
		Variants: []dto.CreateVariantRequest{{Name: "x", SKU: "X-1", Price: 10, Stock: 1}},
	}); !errors.Is(err, ErrConflict) {
		t.Errorf("重复 SKU 应返回冲突错误，实际 %v", err)
	}

	// slug 冲突
	if _, err := svc.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
		SKU: "BTK-002", Slug: "kain-parang", Name: "Lain",
		Variants: []dto.CreateVariantRequest{{Name: "x", SKU: "X-2", Price: 10, Stock: 1}},
	}); !errors.Is(err, ErrConflict) {
		t.Errorf("重复 slug 应返回冲突错误，实际 %v", err)
	}

	// 分类不存在
	if _, err := svc.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
		SKU: "BTK-003", Slug: "kain-kawung", Name: "Kain Kawung",
		CategoryIDs: []int64{9999},
		Variants:    []dto.CreateVariantRequest{{Name: "x", SKU: "X-3", Price: 10, Stock: 1}},
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("引用不存在的分类应返回未找到，实际 %v", err)
	}
}

func TestProductService_GetAndList(t *testing.T) {
	svc, db := newProductTestEnv(t)
	ctx := context.Background()

	if _, err := svc.GetProduct(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("查询不存在的商品应返回未找到，实际 %v", err)
	}

	user, _ := seedShop(t, db, "lister@example.com")
	cat := seedCategory(t, db, "Sarung", "sarung")

	mustCreate := func(sku, slug, name string, categoryIDs []int64) *dto.ProductDetailResponse {
		detail, err := svc.CreateProduct(ctx, user.ID, &dto.CreateProductRequest{
			SKU: sku, Slug: slug, Name: name, CategoryIDs: categoryIDs,
			Variants: []dto.CreateVariantRequest{{Name: "std", SKU: sku + "-STD", Price: 120, Stock: 5}},
		})
		if err != nil {
			t.Fatalf("创建商品 %s 失败: %v", sku, err)
		}
		return detail
	}
	first := mustCreate("LST-001", "sarung-pekalongan", "Sarung Pekalongan", []int64{cat.ID})
	second := mustCreate("LST-002", "selendang-solo", "Selendang Solo", nil)

	// 下架的商品默认不出现在列表里
	inactive := false
	if _, err := svc.UpdateProduct(ctx, user.ID, second.Product.ID, &dto.UpdateProductRequest{
		Active: &inactive,
	}); err != nil {
		t.Fatalf("下架商品失败: %v", err)
	}

	resp, err := svc.ListProducts(ctx, &dto.ListProductsRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("查询商品列表失败: %v", err)
	}
	if resp.Total != 1 || len(resp.List) != 1 {
		t.Fatalf("列表应只含 1 个在售商品，实际 total=%d len=%d", resp.Total, len(resp.List))
	}
	if resp.List[0].ID != first.Product.ID {
		t.Errorf("列表应返回商品 %d，实际 %d", first.Product.ID, resp.List[0].ID)
	}
	if resp.List[0].MinPrice != 120.00 {
		t.Errorf("最低价应为 120.00，实际 %.2f", resp.List[0].MinPrice)
	}

	// 按分类过滤
	resp, err = svc.ListProducts(ctx, &dto.ListProductsRequest{CategoryID: cat.ID, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("按分类过滤失败: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("分类过滤应命中 1 个商品，实际 %d", resp.Total)
	}

	// 关键字过滤
	resp, err = svc.ListProducts(ctx, &dto.ListProductsRequest{Keyword: "Pekalongan", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("关键字过滤失败: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("关键字过滤应命中 1 个商品，实际 %d", resp.Total)
	}

	featured, err := svc.FeaturedProducts(ctx, 5)
	if err != nil {
		t.Fatalf("查询推荐商品失败: %v", err)
	}
	if len(featured) != 1 {
		t.Errorf("推荐商品应只含在售商品，实际 %d", len(featured))
	}

	categories, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("查询分类失败: %v", err)
	}
	if len(categories) != 1 || categories[0].Slug != "sarung" {
		t.Errorf("分类列表不符: %+v", categories)
	}
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	svc, db := newProductTestEnv(t)
	ctx := context.Background()

	owner, _ := seedShop(t, db, "owner2@example.com")
	other, _ := seedShop(t, db, "other2@example.com")

	detail, err := svc.CreateProduct(ctx, owner.ID, &dto.CreateProductRequest{
		SKU: "UPD-001", Slug: "kain-mega-mendung", Name: "Kain Mega Mendung",
		Variants: []dto.CreateVariantRequest{{Name: "std", SKU: "UPD-001-STD", Price: 95, Stock: 3}},
	})
	if err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	productID := detail.Product.ID

	// 别家卖家不能改
	name := "Hacked"
	if _, err := svc.UpdateProduct(ctx, other.ID, productID, &dto.UpdateProductRequest{
		Name: &name,
	}); !errors.Is(err, ErrForbidden) {
		t.Errorf("非所属卖家更新应被拒绝，实际 %v", err)
	}

	newName := "Kain Mega Mendung Premium"
	story := "Motif awan dari Cirebon"
	cat := seedCategory(t, db, "Premium", "premium")
	categoryIDs := []int64{cat.ID}
	updated, err := svc.UpdateProduct(ctx, owner.ID, productID, &dto.UpdateProductRequest{
		Name:         &newName,
		CultureStory: &story,
		CategoryIDs:  &categoryIDs,
	})
	if err != nil {
		t.Fatalf("更新商品失败: %v", err)
	}
	if updated.Product.Name != newName || updated.Product.CultureStory != story {
		t.Errorf("商品字段未更新: %+v", updated.Product)
	}
	if len(updated.Categories) != 1 || updated.Categories[0].ID != cat.ID {
		t.Errorf("分类应被替换为 %d: %+v", cat.ID, updated.Categories)
	}

	if err := svc.DeleteProduct(ctx, other.ID, productID); !errors.Is(err, ErrForbidden) {
		t.Errorf("非所属卖家删除应被拒绝，实际 %v", err)
	}
	if err := svc.DeleteProduct(ctx, owner.ID, productID); err != nil {
		t.Fatalf("删除商品失败: %v", err)
	}
	if _, err := svc.GetProduct(ctx, productID); !errors.Is(err, ErrNotFound) {
		t.Errorf("删除后查询应返回未找到，实际 %v", err)
	}
}
