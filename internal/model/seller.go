package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== 认证等级常量 ====================

// VerificationLevel 卖家认证等级
const (
	VerificationBronze = "bronze" // 铜牌
	VerificationSilver = "silver" // 银牌
	VerificationGold   = "gold"   // 金牌
)

// ValidVerificationLevel 校验认证等级取值
func ValidVerificationLevel(level string) bool {
	switch level {
	case VerificationBronze, VerificationSilver, VerificationGold:
		return true
	}
	return false
}

// ==================== Seller 卖家 ====================

// Seller 卖家（店铺），与 User 一对一
type Seller struct {
	BaseModel
	UserID int64 `gorm:"uniqueIndex;not null"` // 一个用户最多一家店
	User   *User `gorm:"foreignKey:UserID"`

	// --- 店铺信息 ---
	StoreName    string `gorm:"size:255"`
	StoreSlug    string `gorm:"size:255;uniqueIndex"`
	Description  string `gorm:"type:text"`
	OriginRegion string `gorm:"size:100"`

	// --- 认证信息 ---
	Badges            pq.StringArray `gorm:"type:text[]"`
	VerificationLevel string         `gorm:"size:16;index"` // bronze/silver/gold，管理端设置
	VerificationDocs  datatypes.JSON `gorm:"type:jsonb"`
	VerifiedAt        *time.Time

	// --- 结算 ---
	DefaultCurrency string `gorm:"size:10;default:IDR"`

	// --- 关联 ---
	Products []Product `gorm:"foreignKey:SellerID"`
}

func (*Seller) TableName() string {
	return "sellers"
}

// IsVerified 是否已通过认证
func (s *Seller) IsVerified() bool {
	return s.VerificationLevel != ""
}
