package Chat

import (
	"testing"
	"time"

	"panote/database"
	ChatService "panote/service/Chat"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupChatTestDB 创建聊天服务测试数据库（使用 SQLite 内存数据库）
func setupChatTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("无法创建测试数据库: %v", err)
	}

	if err := db.AutoMigrate(&database.ChatMessage{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

// setupMessageService 创建消息服务实例（不接缓存，走降级路径）
func setupMessageService(t *testing.T) ChatService.MessageServiceInterface {
	db := setupChatTestDB(t)
	service, err := ChatService.NewMessageService(db, ChatService.NewCacheService(nil))
	if err != nil {
		t.Fatalf("创建消息服务失败: %v", err)
	}
	return service
}

// TestAppendMessage 测试追加消息
func TestAppendMessage(t *testing.T) {
	service := setupMessageService(t)

	tests := []struct {
		name        string
		userID      uint
		role        string
		content     string
		attachments []string
		wantErr     bool
	}{
		{
			name:    "用户消息",
			userID:  1,
			role:    "user",
			content: "你好",
			wantErr: false,
		},
		{
			name:    "助手消息",
			userID:  1,
			role:    "assistant",
			content: "你好，有什么可以帮你？",
			wantErr: false,
		},
		{
			name:        "只有附件没有文字",
			userID:      1,
			role:        "user",
			content:     "",
			attachments: []string{"https://storage.example.com/images/123-photo.png"},
			wantErr:     false,
		},
		{
			name:    "无效角色",
			userID:  1,
			role:    "system",
			content: "不允许的角色",
			wantErr: true,
		},
		{
			name:    "内容和附件都为空",
			userID:  1,
			role:    "user",
			content: "",
			wantErr: true,
		},
		{
			name:    "用户ID为空",
			userID:  0,
			role:    "user",
			content: "内容",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, err := service.AppendMessage(tt.userID, tt.role, tt.content, tt.attachments)

			if tt.wantErr {
				if err == nil {
					t.Errorf("AppendMessage() 期望返回错误，但没有")
				}
				return
			}

			if err != nil {
				t.Errorf("AppendMessage() 意外返回错误: %v", err)
				return
			}

			if message.ID == "" {
				t.Error("新消息应该有ID")
			}
			if message.Role != tt.role {
				t.Errorf("消息角色不匹配: 得到 %v, 期望 %v", message.Role, tt.role)
			}
		})
	}
}

// TestStripLocalAttachments 测试本地附件地址的过滤
func TestStripLocalAttachments(t *testing.T) {
	service := setupMessageService(t)

	// blob: 地址刷新后失效，不应该落库
	message, err := service.AppendMessage(1, "user", "带附件的消息", []string{
		"blob:http://localhost:5173/0a1b2c3d",
		"https://storage.example.com/images/123-photo.png",
		"blob:http://localhost:5173/4e5f6a7b",
	})
	if err != nil {
		t.Fatalf("AppendMessage() 意外返回错误: %v", err)
	}

	if len(message.Attachments) != 1 {
		t.Fatalf("附件数量不匹配: 得到 %d, 期望 1", len(message.Attachments))
	}
	if message.Attachments[0] != "https://storage.example.com/images/123-photo.png" {
		t.Errorf("保留的附件不匹配: 得到 %v", message.Attachments[0])
	}

	// 全部是 blob: 地址且没有文字时，消息整体无效
	if _, err := service.AppendMessage(1, "user", "", []string{"blob:http://localhost:5173/abc"}); err == nil {
		t.Error("过滤后内容和附件都为空的消息应该返回错误")
	}

	// 有文字时即使附件全被过滤也能保存
	message, err = service.AppendMessage(1, "user", "文字还在", []string{"blob:http://localhost:5173/abc"})
	if err != nil {
		t.Fatalf("AppendMessage() 意外返回错误: %v", err)
	}
	if len(message.Attachments) != 0 {
		t.Errorf("blob: 附件应该全部被过滤: 剩余 %d 个", len(message.Attachments))
	}
}

// TestGetUserMessagesOrdering 测试聊天记录按时间升序返回
func TestGetUserMessagesOrdering(t *testing.T) {
	service := setupMessageService(t)

	contents := []string{"第一条", "第二条", "第三条"}
	roles := []string{"user", "assistant", "user"}
	for i := range contents {
		if _, err := service.AppendMessage(1, roles[i], contents[i], nil); err != nil {
			t.Fatalf("创建测试消息失败: %v", err)
		}
		// 确保创建时间不同
		time.Sleep(10 * time.Millisecond)
	}
	// 其他用户的消息不应该混进来
	if _, err := service.AppendMessage(2, "user", "别人的消息", nil); err != nil {
		t.Fatalf("创建测试消息失败: %v", err)
	}

	messages, err := service.GetUserMessages(1)
	if err != nil {
		t.Fatalf("查询聊天记录失败: %v", err)
	}

	if len(messages) != len(contents) {
		t.Fatalf("消息数量不匹配: 得到 %d, 期望 %d", len(messages), len(contents))
	}
	for i, m := range messages {
		if m.Content != contents[i] {
			t.Errorf("第 %d 条消息内容不匹配: 得到 %v, 期望 %v", i, m.Content, contents[i])
		}
		if m.UserID != 1 {
			t.Errorf("出现了其他用户的消息: 用户 %d", m.UserID)
		}
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Error("消息应该按创建时间升序排列")
		}
	}
}

// TestDeleteUserMessages 测试删除用户的全部消息
func TestDeleteUserMessages(t *testing.T) {
	service := setupMessageService(t)

	if _, err := service.AppendMessage(1, "user", "消息一", nil); err != nil {
		t.Fatalf("创建测试消息失败: %v", err)
	}
	if _, err := service.AppendMessage(1, "assistant", "消息二", nil); err != nil {
		t.Fatalf("创建测试消息失败: %v", err)
	}
	if _, err := service.AppendMessage(2, "user", "别人的消息", nil); err != nil {
		t.Fatalf("创建测试消息失败: %v", err)
	}

	if err := service.DeleteUserMessages(1); err != nil {
		t.Fatalf("删除用户消息失败: %v", err)
	}

	mine, err := service.GetUserMessages(1)
	if err != nil {
		t.Fatalf("查询聊天记录失败: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("用户1的消息应该全部被删除: 剩余 %d 条", len(mine))
	}

	others, err := service.GetUserMessages(2)
	if err != nil {
		t.Fatalf("查询聊天记录失败: %v", err)
	}
	if len(others) != 1 {
		t.Errorf("其他用户的消息不应受影响: 得到 %d 条", len(others))
	}
}
