package service

import (
	"context"
	"encoding/json"
	"math"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== ProductService ====================

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
	sellerRepo  repository.SellerRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository, sellerRepo repository.SellerRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		sellerRepo:  sellerRepo,
	}
}

// ==================== 创建商品 ====================

// CreateProduct 创建商品。商品、规格与分类关联在同一事务内写入
func (s *ProductService) CreateProduct(ctx context.Context, userID int64, req *dto.CreateProductRequest) (*dto.ProductDetailResponse, error) {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, forbiddenf("当前用户没有店铺，不能发布商品")
	}

	skuTaken, err := s.productRepo.SKUExists(ctx, req.SKU, 0)
	if err != nil {
		return nil, err
	}
	if skuTaken {
		return nil, conflictf("SKU %s 已存在", req.SKU)
	}
	slugTaken, err := s.productRepo.SlugExists(ctx, req.Slug, 0)
	if err != nil {
		return nil, err
	}
	if slugTaken {
		return nil, conflictf("商品标识 %s 已被占用", req.Slug)
	}

	product := &model.Product{
		SellerID:          seller.ID,
		SKU:               req.SKU,
		Slug:              req.Slug,
		Name:              req.Name,
		Description:       req.Description,
		CultureStory:      req.CultureStory,
		CareGuide:         req.CareGuide,
		OriginRegion:      req.OriginRegion,
		Attributes:        datatypes.JSONMap(req.Attributes),
		Motifs:            pq.StringArray(req.Motifs),
		Materials:         pq.StringArray(req.Materials),
		PrimaryImageURL:   req.PrimaryImageURL,
		HSCode:            req.HSCode,
		MadeInCountryCode: req.MadeInCountryCode,
		Active:            true,
	}
	if product.MadeInCountryCode == "" {
		product.MadeInCountryCode = "ID"
	}
	if len(req.Images) > 0 {
		raw, err := json.Marshal(req.Images)
		if err != nil {
			return nil, validationf("图片列表格式不正确")
		}
		product.Images = datatypes.JSON(raw)
	}

	for _, v := range req.Variants {
		product.Variants = append(product.Variants, model.ProductVariant{
			Name:        v.Name,
			SKU:         v.SKU,
			PriceAmount: int64(math.Round(v.Price * 100)),
			Stock:       v.Stock,
			WeightGrams: v.WeightGrams,
		})
	}

	if len(req.CategoryIDs) > 0 {
		categories, err := s.productRepo.GetCategoriesByIDs(ctx, req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if len(categories) != len(req.CategoryIDs) {
			return nil, notFoundf("部分分类不存在")
		}
		product.Categories = categories
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductDetail(product), nil
}

// ==================== 查询 ====================

// GetProduct 获取商品详情，附带规格与分类
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*dto.ProductDetailResponse, error) {
	product, err := s.productRepo.GetByIDWithRelations(ctx, id)
	if err != nil {
		return nil, notFoundf("商品 %d 不存在", id)
	}
	return toProductDetail(product), nil
}

// ListProducts 获取商品列表，默认仅展示在售商品
func (s *ProductService) ListProducts(ctx context.Context, req *dto.ListProductsRequest) (*dto.ListProductsResponse, error) {
	active := true
	filter := repository.ProductFilter{
		Keyword:    req.Keyword,
		SellerID:   req.SellerID,
		CategoryID: req.CategoryID,
		Motif:      req.Motif,
		Material:   req.Material,
		Active:     &active,
		SortBy:     req.SortBy,
		SortDesc:   req.SortDesc,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.ProductListVO, 0, len(products))
	for i := range products {
		list = append(list, *toProductListVO(&products[i]))
	}
	return &dto.ListProductsResponse{Total: total, List: list}, nil
}

// FeaturedProducts 获取推荐商品
func (s *ProductService) FeaturedProducts(ctx context.Context, limit int) ([]dto.ProductListVO, error) {
	if limit <= 0 || limit > 50 {
		limit = 12
	}
	products, err := s.productRepo.Featured(ctx, limit)
	if err != nil {
		return nil, err
	}

	list := make([]dto.ProductListVO, 0, len(products))
	for i := range products {
		list = append(list, *toProductListVO(&products[i]))
	}
	return list, nil
}

// ListCategories 获取全部分类
func (s *ProductService) ListCategories(ctx context.Context) ([]dto.CategoryVO, error) {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]dto.CategoryVO, 0, len(categories))
	for _, c := range categories {
		list = append(list, dto.CategoryVO{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return list, nil
}

// ==================== 更新 ====================

// UpdateProduct 更新商品，仅商品所属卖家可操作
func (s *ProductService) UpdateProduct(ctx context.Context, userID, productID int64, req *dto.UpdateProductRequest) (*dto.ProductDetailResponse, error) {
	product, err := s.productRepo.GetByIDWithRelations(ctx, productID)
	if err != nil {
		return nil, notFoundf("商品 %d 不存在", productID)
	}
	if err := s.ensureOwner(ctx, userID, product); err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CultureStory != nil {
		product.CultureStory = *req.CultureStory
	}
	if req.CareGuide != nil {
		product.CareGuide = *req.CareGuide
	}
	if req.OriginRegion != nil {
		product.OriginRegion = *req.OriginRegion
	}
	if req.Attributes != nil {
		product.Attributes = datatypes.JSONMap(*req.Attributes)
	}
	if req.Motifs != nil {
		product.Motifs = pq.StringArray(*req.Motifs)
	}
	if req.Materials != nil {
		product.Materials = pq.StringArray(*req.Materials)
	}
	if req.PrimaryImageURL != nil {
		product.PrimaryImageURL = *req.PrimaryImageURL
	}
	if req.Images != nil {
		raw, err := json.Marshal(*req.Images)
		if err != nil {
			return nil, validationf("图片列表格式不正确")
		}
		product.Images = datatypes.JSON(raw)
	}
	if req.HSCode != nil {
		product.HSCode = *req.HSCode
	}
	if req.MadeInCountryCode != nil {
		product.MadeInCountryCode = *req.MadeInCountryCode
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if req.CategoryIDs != nil {
		categories, err := s.productRepo.GetCategoriesByIDs(ctx, *req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if len(categories) != len(*req.CategoryIDs) {
			return nil, notFoundf("部分分类不存在")
		}
		if err := s.productRepo.ReplaceCategories(ctx, product, categories); err != nil {
			return nil, err
		}
		product.Categories = categories
	}

	return toProductDetail(product), nil
}

// ==================== 删除 ====================

// DeleteProduct 删除商品（软删除），仅商品所属卖家可操作
func (s *ProductService) DeleteProduct(ctx context.Context, userID, productID int64) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return notFoundf("商品 %d 不存在", productID)
	}
	if err := s.ensureOwner(ctx, userID, product); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, productID)
}

// ensureOwner 校验商品归属于当前用户的店铺
func (s *ProductService) ensureOwner(ctx context.Context, userID int64, product *model.Product) error {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return forbiddenf("当前用户没有店铺")
	}
	if product.SellerID != seller.ID {
		return forbiddenf("无权操作他人商品")
	}
	return nil
}

// ==================== 辅助 ====================

// toProductListVO 转换为列表视图对象，最低规格价作为展示价
func toProductListVO(p *model.Product) *dto.ProductListVO {
	vo := &dto.ProductListVO{
		ID:              p.ID,
		SellerID:        p.SellerID,
		SKU:             p.SKU,
		Slug:            p.Slug,
		Name:            p.Name,
		OriginRegion:    p.OriginRegion,
		Motifs:          []string(p.Motifs),
		Materials:       []string(p.Materials),
		PrimaryImageURL: p.PrimaryImageURL,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt,
	}
	for i := range p.Variants {
		price := p.Variants[i].GetPrice()
		if vo.MinPrice == 0 || price < vo.MinPrice {
			vo.MinPrice = price
		}
	}
	return vo
}

// toProductDetail 转换为详情响应
func toProductDetail(p *model.Product) *dto.ProductDetailResponse {
	var images []string
	if len(p.Images) > 0 {
		_ = json.Unmarshal(p.Images, &images)
	}

	resp := &dto.ProductDetailResponse{
		Product: &dto.ProductVO{
			ID:                p.ID,
			SellerID:          p.SellerID,
			SKU:               p.SKU,
			Slug:              p.Slug,
			Name:              p.Name,
			Description:       p.Description,
			CultureStory:      p.CultureStory,
			CareGuide:         p.CareGuide,
			OriginRegion:      p.OriginRegion,
			Attributes:        map[string]interface{}(p.Attributes),
			Motifs:            []string(p.Motifs),
			Materials:         []string(p.Materials),
			PrimaryImageURL:   p.PrimaryImageURL,
			Images:            images,
			HSCode:            p.HSCode,
			MadeInCountryCode: p.MadeInCountryCode,
			Active:            p.Active,
			CreatedAt:         p.CreatedAt,
			UpdatedAt:         p.UpdatedAt,
		},
	}
	resp.Variants = make([]dto.VariantVO, 0, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		resp.Variants = append(resp.Variants, dto.VariantVO{
			ID:          v.ID,
			Name:        v.Name,
			SKU:         v.SKU,
			Price:       v.GetPrice(),
			Stock:       v.Stock,
			WeightGrams: v.WeightGrams,
		})
	}
	resp.Categories = make([]dto.CategoryVO, 0, len(p.Categories))
	for _, c := range p.Categories {
		resp.Categories = append(resp.Categories, dto.CategoryVO{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	return resp
}
