package dto

// ==================== 用户列表 ====================

// ListUsersRequest 用户列表请求
type ListUsersRequest struct {
	Keyword  string `form:"keyword"` // 搜索：邮箱、姓名
	IsSeller *bool  `form:"is_seller"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ListUsersResponse 用户列表响应
type ListUsersResponse struct {
	Total int64    `json:"total"`
	List  []UserVO `json:"list"`
}

// ==================== 更新用户 ====================

// UpdateUserRequest 更新用户请求，仅更新非空字段
type UpdateUserRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}
