package Chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"panote/database"
)

// MessageServiceInterface 聊天消息服务接口
// 消息只追加，按创建时间升序返回，服务层不做重排
type MessageServiceInterface interface {
	AppendMessage(userID uint, role, content string, attachments []string) (*database.ChatMessage, error)
	GetUserMessages(userID uint) ([]database.ChatMessage, error)
	DeleteUserMessages(userID uint) error
}

var GlobalMessageService MessageServiceInterface

type messageService struct {
	db    *gorm.DB
	cache CacheServiceInterface
}

func NewMessageService(db *gorm.DB, cache CacheServiceInterface) (MessageServiceInterface, error) {
	if db == nil {
		return nil, errors.New("数据库连接不能为空")
	}
	service := &messageService{db: db, cache: cache}
	GlobalMessageService = service
	return service, nil
}

// stripLocalAttachments 过滤掉仅本地有效的附件地址（blob:）
// 这类地址刷新后失效，不值得落库
func stripLocalAttachments(attachments []string) []string {
	if len(attachments) == 0 {
		return nil
	}
	kept := make([]string, 0, len(attachments))
	for _, a := range attachments {
		if strings.HasPrefix(a, "blob:") {
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// AppendMessage 追加一条消息
func (s *messageService) AppendMessage(userID uint, role, content string, attachments []string) (*database.ChatMessage, error) {
	if userID == 0 {
		return nil, errors.New("用户ID不能为空")
	}
	if role != "user" && role != "assistant" {
		return nil, errors.New("无效的消息角色")
	}

	attachments = stripLocalAttachments(attachments)
	if content == "" && len(attachments) == 0 {
		return nil, errors.New("消息内容和附件不能同时为空")
	}

	message := &database.ChatMessage{
		ID:          uuid.New().String(),
		UserID:      userID,
		Role:        role,
		Content:     content,
		Attachments: attachments,
	}
	if err := s.db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("创建消息失败: %w", err)
	}

	// 写入后缓存失效，下次读取回源
	if s.cache != nil {
		s.cache.InvalidateTranscript(userID)
	}
	return message, nil
}

// GetUserMessages 获取用户的完整聊天记录，按创建时间升序
func (s *messageService) GetUserMessages(userID uint) ([]database.ChatMessage, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCachedTranscript(userID); err == nil {
			return cached, nil
		}
	}

	var messages []database.ChatMessage
	err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("查询聊天记录失败: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.CacheTranscript(userID, messages)
	}
	return messages, nil
}

// DeleteUserMessages 删除用户的所有消息，用于注销账号
func (s *messageService) DeleteUserMessages(userID uint) error {
	if userID == 0 {
		return errors.New("用户ID不能为空")
	}
	if err := s.db.Where("user_id = ?", userID).Delete(&database.ChatMessage{}).Error; err != nil {
		return fmt.Errorf("删除用户消息失败: %w", err)
	}
	if s.cache != nil {
		s.cache.InvalidateTranscript(userID)
	}
	return nil
}
