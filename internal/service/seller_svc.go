package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== SellerService ====================

// SellerService 店铺服务
type SellerService struct {
	sellerRepo repository.SellerRepository
	userRepo   repository.UserRepository
}

// NewSellerService 创建店铺服务
func NewSellerService(sellerRepo repository.SellerRepository, userRepo repository.UserRepository) *SellerService {
	return &SellerService{
		sellerRepo: sellerRepo,
		userRepo:   userRepo,
	}
}

// ==================== 开店 ====================

// CreateSeller 开店，一个用户最多一家店。成功后置位用户的卖家标记
func (s *SellerService) CreateSeller(ctx context.Context, userID int64, req *dto.CreateSellerRequest) (*dto.SellerVO, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundf("用户 %d 不存在", userID)
	}

	exists, err := s.sellerRepo.ExistsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictf("用户 %d 已有店铺", userID)
	}

	slugTaken, err := s.sellerRepo.SlugExists(ctx, req.StoreSlug, 0)
	if err != nil {
		return nil, err
	}
	if slugTaken {
		return nil, conflictf("店铺标识 %s 已被占用", req.StoreSlug)
	}

	seller := &model.Seller{
		UserID:            user.ID,
		StoreName:         req.StoreName,
		StoreSlug:         req.StoreSlug,
		Description:       req.Description,
		OriginRegion:      req.OriginRegion,
		Badges:            pq.StringArray(req.Badges),
		VerificationLevel: model.VerificationBronze,
		DefaultCurrency:   "IDR",
	}
	if err := s.sellerRepo.Create(ctx, seller); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{
		"is_seller": true,
	}); err != nil {
		return nil, err
	}

	return toSellerVO(seller), nil
}

// ==================== 查询 ====================

// GetSeller 获取店铺详情，附带最新商品
func (s *SellerService) GetSeller(ctx context.Context, id int64) (*dto.SellerDetailResponse, error) {
	seller, err := s.sellerRepo.GetByIDWithProducts(ctx, id, 12)
	if err != nil {
		return nil, notFoundf("店铺 %d 不存在", id)
	}

	resp := &dto.SellerDetailResponse{Seller: toSellerVO(seller)}
	resp.Products = make([]dto.ProductListVO, 0, len(seller.Products))
	for i := range seller.Products {
		resp.Products = append(resp.Products, *toProductListVO(&seller.Products[i]))
	}
	return resp, nil
}

// GetSellerByUser 按用户获取店铺
func (s *SellerService) GetSellerByUser(ctx context.Context, userID int64) (*dto.SellerVO, error) {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundf("用户 %d 没有店铺", userID)
	}
	return toSellerVO(seller), nil
}

// ListSellers 获取店铺列表
func (s *SellerService) ListSellers(ctx context.Context, req *dto.ListSellersRequest) (*dto.ListSellersResponse, error) {
	filter := repository.SellerFilter{
		Keyword:           req.Keyword,
		VerificationLevel: req.VerificationLevel,
		OriginRegion:      req.OriginRegion,
		Page:              req.Page,
		PageSize:          req.PageSize,
	}

	sellers, total, err := s.sellerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.SellerVO, 0, len(sellers))
	for i := range sellers {
		list = append(list, *toSellerVO(&sellers[i]))
	}
	return &dto.ListSellersResponse{Total: total, List: list}, nil
}

// ==================== 更新 ====================

// UpdateSeller 更新店铺资料，仅店主可操作
func (s *SellerService) UpdateSeller(ctx context.Context, userID, sellerID int64, req *dto.UpdateSellerRequest) (*dto.SellerVO, error) {
	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, notFoundf("店铺 %d 不存在", sellerID)
	}
	if seller.UserID != userID {
		return nil, forbiddenf("无权修改他人店铺")
	}

	if req.StoreName != nil {
		seller.StoreName = *req.StoreName
	}
	if req.Description != nil {
		seller.Description = *req.Description
	}
	if req.OriginRegion != nil {
		seller.OriginRegion = *req.OriginRegion
	}
	if req.Badges != nil {
		seller.Badges = pq.StringArray(*req.Badges)
	}

	if err := s.sellerRepo.Update(ctx, seller); err != nil {
		return nil, err
	}
	return toSellerVO(seller), nil
}

// ==================== 删除 ====================

// DeleteSeller 关店，仅店主可操作，同时清除用户的卖家标记
func (s *SellerService) DeleteSeller(ctx context.Context, userID, sellerID int64) error {
	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		return notFoundf("店铺 %d 不存在", sellerID)
	}
	if seller.UserID != userID {
		return forbiddenf("无权关闭他人店铺")
	}

	if err := s.sellerRepo.Delete(ctx, sellerID); err != nil {
		return err
	}
	return s.userRepo.UpdateFields(ctx, seller.UserID, map[string]interface{}{
		"is_seller": false,
	})
}

// ==================== 认证 ====================

// VerifySeller 店铺认证，设置认证等级与材料并记录认证时间
func (s *SellerService) VerifySeller(ctx context.Context, sellerID int64, req *dto.VerifySellerRequest) (*dto.SellerVO, error) {
	if !model.ValidVerificationLevel(req.VerificationLevel) {
		return nil, validationf("无效的认证等级 %s", req.VerificationLevel)
	}

	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, notFoundf("店铺 %d 不存在", sellerID)
	}

	now := time.Now()
	fields := map[string]interface{}{
		"verification_level": req.VerificationLevel,
		"verified_at":        now,
	}
	if req.Docs != nil {
		raw, err := json.Marshal(req.Docs)
		if err != nil {
			return nil, validationf("认证材料格式不正确")
		}
		fields["verification_docs"] = datatypes.JSON(raw)
		seller.VerificationDocs = datatypes.JSON(raw)
	}
	if err := s.sellerRepo.UpdateFields(ctx, sellerID, fields); err != nil {
		return nil, err
	}

	seller.VerificationLevel = req.VerificationLevel
	seller.VerifiedAt = &now
	return toSellerVO(seller), nil
}

// VerificationStatus 查询店铺认证状态
func (s *SellerService) VerificationStatus(ctx context.Context, sellerID int64) (*dto.VerificationStatusResponse, error) {
	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, notFoundf("店铺 %d 不存在", sellerID)
	}
	return &dto.VerificationStatusResponse{
		SellerID:          seller.ID,
		VerificationLevel: seller.VerificationLevel,
		IsVerified:        seller.IsVerified(),
		VerifiedAt:        seller.VerifiedAt,
	}, nil
}

// toSellerVO 转换为视图对象
func toSellerVO(s *model.Seller) *dto.SellerVO {
	return &dto.SellerVO{
		ID:                s.ID,
		UserID:            s.UserID,
		StoreName:         s.StoreName,
		StoreSlug:         s.StoreSlug,
		Description:       s.Description,
		OriginRegion:      s.OriginRegion,
		Badges:            []string(s.Badges),
		VerificationLevel: s.VerificationLevel,
		VerifiedAt:        s.VerifiedAt,
		DefaultCurrency:   s.DefaultCurrency,
		CreatedAt:         s.CreatedAt,
	}
}
