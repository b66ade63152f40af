package model

import "time"

// User 平台用户（买家，开店后同时是卖家）
type User struct {
	BaseModel

	// --- 外部身份 ---
	ExternalID string `gorm:"size:64;uniqueIndex;not null"` // 身份提供商侧的 subject id

	// --- 联系信息 ---
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Phone     string `gorm:"size:32"`
	FullName  string `gorm:"size:255"`
	AvatarURL string `gorm:"size:500"`

	// --- 状态标记 ---
	IsSeller    bool `gorm:"default:false;index"`
	IsVerified  bool `gorm:"default:false"`
	LastLoginAt *time.Time

	// --- 关联 ---
	Seller *Seller `gorm:"foreignKey:UserID"`
}

func (*User) TableName() string {
	return "users"
}
