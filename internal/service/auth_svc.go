package service

import (
	"context"
	"errors"
	"time"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
	"github.com/AnggaPuspa/RestApiBatika/pkg/identity"
	"github.com/AnggaPuspa/RestApiBatika/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// 令牌校验结果的本地缓存时长，降低身份服务压力
const tokenCacheTTL = 5 * time.Minute

// ==================== AuthService ====================

// AuthService 认证服务，对接外部身份提供商并维护本地用户
type AuthService struct {
	userRepo   repository.UserRepository
	sellerRepo repository.SellerRepository
	provider   *identity.Client
	jwtSecret  []byte
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository, sellerRepo repository.SellerRepository, provider *identity.Client) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		sellerRepo: sellerRepo,
		provider:   provider,
	}
}

// SetJWTSecret 配置提供商的 JWT 签名密钥。
// 配置后令牌可在本地校验，省去一次身份服务往返
func (s *AuthService) SetJWTSecret(secret string) {
	if secret != "" {
		s.jwtSecret = []byte(secret)
	}
}

// ==================== 注册 ====================

// Register 注册：先在身份提供商创建账号，再落本地用户行
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	exists, err := s.userRepo.EmailExists(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflictf("邮箱 %s 已注册", req.Email)
	}

	tokens, err := s.provider.SignUp(ctx, req.Email, req.Password, map[string]interface{}{
		"full_name": req.FullName,
		"phone":     req.Phone,
	})
	if err != nil {
		return nil, unauthorizedf("%v", err)
	}
	if tokens.User == nil {
		return nil, unauthorizedf("身份服务未返回用户信息")
	}

	user := &model.User{
		ExternalID: tokens.User.Subject,
		Email:      req.Email,
		Phone:      req.Phone,
		FullName:   req.FullName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.toTokenResponse(tokens, user), nil
}

// ==================== 登录 ====================

// Login 密码登录，成功后刷新本地用户的最近登录时间
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	tokens, err := s.provider.PasswordGrant(ctx, req.Email, req.Password)
	if err != nil {
		return nil, unauthorizedf("邮箱或密码不正确")
	}
	if tokens.User == nil {
		return nil, unauthorizedf("身份服务未返回用户信息")
	}

	user, err := s.resolveLocalUser(ctx, tokens.User)
	if err != nil {
		return nil, err
	}
	return s.toTokenResponse(tokens, user), nil
}

// ==================== 刷新令牌 ====================

// Refresh 用刷新令牌换取新会话
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	tokens, err := s.provider.RefreshGrant(ctx, req.RefreshToken)
	if err != nil {
		return nil, unauthorizedf("刷新令牌无效")
	}

	var user *model.User
	if tokens.User != nil {
		user, err = s.resolveLocalUser(ctx, tokens.User)
		if err != nil {
			return nil, err
		}
	}
	return s.toTokenResponse(tokens, user), nil
}

// ==================== 注销 ====================

// Logout 注销会话并清除本地令牌缓存
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	utils.DeleteCache(tokenCacheKey(accessToken))
	if err := s.provider.Logout(ctx, accessToken); err != nil {
		return unauthorizedf("%v", err)
	}
	return nil
}

// ==================== 当前用户 ====================

// Me 获取当前登录用户信息，附带店铺（如有）
func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundf("用户 %d 不存在", userID)
	}

	resp := &dto.ProfileResponse{User: toUserVO(user)}
	if user.IsSeller {
		if seller, err := s.sellerRepo.GetByUserID(ctx, userID); err == nil {
			resp.Seller = toSellerVO(seller)
		}
	}
	return resp, nil
}

// ==================== 令牌解析 ====================

// Resolve 把访问令牌解析为本地用户。首次见到的身份自动落库，
// 每次解析刷新最近登录时间，校验结果短暂缓存。
func (s *AuthService) Resolve(ctx context.Context, accessToken string) (*model.User, error) {
	if accessToken == "" {
		return nil, unauthorizedf("缺少访问令牌")
	}

	cacheKey := tokenCacheKey(accessToken)
	if cached, ok := utils.GetCache(cacheKey); ok {
		if userID, ok := cached.(int64); ok {
			if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
				return user, nil
			}
		}
	}

	// 优先本地校验 JWT 签名，失败或未配置密钥时回退到身份服务
	id, err := s.verifyLocal(accessToken)
	if err != nil {
		id, err = s.provider.VerifyToken(ctx, accessToken)
		if err != nil {
			return nil, unauthorizedf("访问令牌无效")
		}
	}

	user, err := s.resolveLocalUser(ctx, id)
	if err != nil {
		return nil, err
	}

	utils.SetCache(cacheKey, user.ID, tokenCacheTTL)
	return user, nil
}

// verifyLocal 用提供商密钥在本地校验 HS256 JWT 并还原身份
func (s *AuthService) verifyLocal(accessToken string) (*identity.Identity, error) {
	if len(s.jwtSecret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token missing subject")
	}

	id := &identity.Identity{Subject: sub}
	id.Email, _ = claims["email"].(string)
	id.Phone, _ = claims["phone"].(string)
	if meta, ok := claims["user_metadata"].(map[string]interface{}); ok {
		id.Metadata = meta
	}
	return id, nil
}

// resolveLocalUser 按提供商身份取本地用户，不存在则创建
func (s *AuthService) resolveLocalUser(ctx context.Context, id *identity.Identity) (*model.User, error) {
	user, err := s.userRepo.GetByExternalID(ctx, id.Subject)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &model.User{
			ExternalID: id.Subject,
			Email:      id.Email,
			Phone:      id.Phone,
			FullName:   metadataString(id.Metadata, "full_name"),
			AvatarURL:  metadataString(id.Metadata, "avatar_url"),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return user, nil
}

// ==================== 辅助 ====================

func tokenCacheKey(accessToken string) string {
	return "auth:token:" + accessToken
}

func metadataString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func (s *AuthService) toTokenResponse(tokens *identity.Tokens, user *model.User) *dto.TokenResponse {
	resp := &dto.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
		ExpiresIn:    tokens.ExpiresIn,
	}
	if resp.TokenType == "" {
		resp.TokenType = "bearer"
	}
	if user != nil {
		resp.User = toUserVO(user)
	}
	return resp
}
