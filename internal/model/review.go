package model

// ==================== 审核状态常量 ====================

// ReviewStatus 评价审核状态
const (
	ReviewStatusApproved = "approved" // 已通过
	ReviewStatusPending  = "pending"  // 待审核
	ReviewStatusRejected = "rejected" // 已驳回
)

// ==================== Review 商品评价 ====================

// Review 商品评价
// (user_id, product_id) 复合唯一索引保证一人一评
type Review struct {
	BaseModel
	UserID    int64    `gorm:"not null;uniqueIndex:idx_review_user_product"`
	User      *User    `gorm:"foreignKey:UserID"`
	ProductID int64    `gorm:"not null;uniqueIndex:idx_review_user_product"`
	Product   *Product `gorm:"foreignKey:ProductID"`
	OrderID   *int64   `gorm:"index"` // 可选关联的订单

	// --- 内容 ---
	Rating  int    `gorm:"not null"` // 1..5
	Title   string `gorm:"size:255"`
	Comment string `gorm:"type:text"`

	// --- 标记 ---
	IsVerified bool   `gorm:"default:false"` // 已购认证
	Status     string `gorm:"size:16;index;default:approved"`
}

func (*Review) TableName() string {
	return "reviews"
}

// RatingSummary 商品评分汇总（按需计算，不落库）
type RatingSummary struct {
	ProductID    int64         `json:"product_id"`
	Average      float64       `json:"average"` // 保留两位小数
	Count        int64         `json:"count"`
	Distribution map[int]int64 `json:"distribution"` // 1..5 星各档数量
}
