package model

import "time"

// ==================== Conversation 会话 ====================

// Conversation 买卖双方围绕某商品的会话
type Conversation struct {
	BaseModel
	BuyerID   int64    `gorm:"index:idx_conv_pair;not null"`
	Buyer     *User    `gorm:"foreignKey:BuyerID"`
	SellerID  int64    `gorm:"index:idx_conv_pair;not null"` // 卖家侧的用户 ID
	Seller    *User    `gorm:"foreignKey:SellerID"`
	ProductID *int64   `gorm:"index"`
	Product   *Product `gorm:"foreignKey:ProductID"`

	LastMessageAt *time.Time `gorm:"index"`

	// --- 关联 ---
	Messages []Message `gorm:"foreignKey:ConversationID"`
}

func (*Conversation) TableName() string {
	return "conversations"
}

// IsParticipant 判断用户是否为会话参与方
func (c *Conversation) IsParticipant(userID int64) bool {
	return userID == c.BuyerID || userID == c.SellerID
}

// ==================== Message 消息 ====================

// Message 会话内的消息
type Message struct {
	BaseModel
	ConversationID int64 `gorm:"index;not null"`
	SenderID       int64 `gorm:"index;not null"`
	Sender         *User `gorm:"foreignKey:SenderID"`

	Content string `gorm:"type:text;not null"`
	IsRead  bool   `gorm:"default:false;index"`
}

func (*Message) TableName() string {
	return "messages"
}
