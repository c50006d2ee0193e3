package database

import (
	"time"
)

// ChatMessage 聊天消息，只追加，按创建时间升序
type ChatMessage struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"-"`
	Role        string    `gorm:"size:20;not null" json:"role"` // user, assistant
	Content     string    `gorm:"type:text" json:"content"`
	Attachments []string  `gorm:"type:text;serializer:json" json:"attachments"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateMessageRequest 创建消息请求
// content 和 attachments 至少一个非空，由服务层校验
type CreateMessageRequest struct {
	Role        string   `json:"role" binding:"required,oneof=user assistant"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

// ChatTurn AI对话的一轮，最后一轮视为新提问
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIChatRequest AI聊天请求
type AIChatRequest struct {
	Messages []ChatTurn `json:"messages" binding:"required"`
}

// AIVisionRequest 图片文字提取请求
type AIVisionRequest struct {
	Image    string `json:"image" binding:"required"` // base64编码
	MimeType string `json:"mimeType" binding:"required"`
}

// AITextResponse AI接口统一响应
type AITextResponse struct {
	Text string `json:"text"`
}
