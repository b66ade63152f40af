package service

import (
	"context"

	"github.com/AnggaPuspa/RestApiBatika/internal/api/dto"
	"github.com/AnggaPuspa/RestApiBatika/internal/model"
	"github.com/AnggaPuspa/RestApiBatika/internal/repository"
)

// ==================== UserService ====================

// UserService 用户服务
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ==================== 查询 ====================

// GetUser 获取用户详情
func (s *UserService) GetUser(ctx context.Context, id int64) (*dto.UserVO, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundf("用户 %d 不存在", id)
	}
	return toUserVO(user), nil
}

// ListUsers 获取用户列表
func (s *UserService) ListUsers(ctx context.Context, req *dto.ListUsersRequest) (*dto.ListUsersResponse, error) {
	filter := repository.UserFilter{
		Keyword:  req.Keyword,
		IsSeller: req.IsSeller,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	list := make([]dto.UserVO, 0, len(users))
	for i := range users {
		list = append(list, *toUserVO(&users[i]))
	}
	return &dto.ListUsersResponse{Total: total, List: list}, nil
}

// ==================== 更新 ====================

// UpdateUser 更新用户资料，仅允许本人更新
func (s *UserService) UpdateUser(ctx context.Context, principalID, userID int64, req *dto.UpdateUserRequest) (*dto.UserVO, error) {
	if principalID != userID {
		return nil, forbiddenf("无权修改他人资料")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundf("用户 %d 不存在", userID)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return toUserVO(user), nil
}

// ==================== 删除 ====================

// DeleteUser 删除用户（软删除），仅允许本人操作
func (s *UserService) DeleteUser(ctx context.Context, principalID, userID int64) error {
	if principalID != userID {
		return forbiddenf("无权删除他人账号")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return notFoundf("用户 %d 不存在", userID)
	}
	return s.userRepo.Delete(ctx, userID)
}

// toUserVO 转换为视图对象
func toUserVO(u *model.User) *dto.UserVO {
	return &dto.UserVO{
		ID:          u.ID,
		Email:       u.Email,
		Phone:       u.Phone,
		FullName:    u.FullName,
		AvatarURL:   u.AvatarURL,
		IsSeller:    u.IsSeller,
		IsVerified:  u.IsVerified,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
