package Tag

import (
	"testing"

	"panote/database"
	NoteService "panote/service/Note"
	TagService "panote/service/Tag"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupTagTestDB 创建标签服务测试数据库（使用 SQLite 内存数据库）
func setupTagTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("无法创建测试数据库: %v", err)
	}

	if err := db.AutoMigrate(&database.Note{}, &database.Tag{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

// setupTagService 创建标签服务和它依赖的笔记服务
func setupTagService(t *testing.T) (TagService.TagServiceInterface, NoteService.NoteServiceInterface) {
	db := setupTagTestDB(t)

	noteService, err := NoteService.NewNoteService(db)
	if err != nil {
		t.Fatalf("创建笔记服务失败: %v", err)
	}
	tagService, err := TagService.NewTagService(db, noteService)
	if err != nil {
		t.Fatalf("创建标签服务失败: %v", err)
	}

	return tagService, noteService
}

// TestCreateTagDeduplication 测试同名标签的复用
func TestCreateTagDeduplication(t *testing.T) {
	service, _ := setupTagService(t)

	first, err := service.CreateTag(1, "Work")
	if err != nil {
		t.Fatalf("创建标签失败: %v", err)
	}

	tests := []struct {
		name       string
		tagName    string
		wantSameID bool
	}{
		{
			name:       "完全相同的名字复用",
			tagName:    "Work",
			wantSameID: true,
		},
		{
			name:       "仅大小写不同也复用",
			tagName:    "work",
			wantSameID: true,
		},
		{
			name:       "混合大小写也复用",
			tagName:    "WORK",
			wantSameID: true,
		},
		{
			name:       "不同名字创建新标签",
			tagName:    "Life",
			wantSameID: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := service.CreateTag(1, tt.tagName)
			if err != nil {
				t.Fatalf("CreateTag() 意外返回错误: %v", err)
			}

			if tt.wantSameID && tag.ID != first.ID {
				t.Errorf("同名标签应该复用已有记录: 得到 %v, 期望 %v", tag.ID, first.ID)
			}
			if !tt.wantSameID && tag.ID == first.ID {
				t.Error("不同名字的标签不应该复用已有记录")
			}
			// 复用时保留原始大小写
			if tt.wantSameID && tag.Name != "Work" {
				t.Errorf("复用的标签应该保留原始名字: 得到 %v", tag.Name)
			}
		})
	}

	// 不同用户的同名标签互不干扰
	otherUserTag, err := service.CreateTag(2, "Work")
	if err != nil {
		t.Fatalf("创建标签失败: %v", err)
	}
	if otherUserTag.ID == first.ID {
		t.Error("不同用户的同名标签应该是独立的记录")
	}

	// 空标签名应该失败
	if _, err := service.CreateTag(1, "   "); err == nil {
		t.Error("空标签名应该返回错误")
	}
}

// TestDeleteTagClearsRefs 测试删除标签时清除笔记引用（包括回收站）
func TestDeleteTagClearsRefs(t *testing.T) {
	service, noteService := setupTagService(t)

	tag, err := service.CreateTag(1, "项目")
	if err != nil {
		t.Fatalf("创建标签失败: %v", err)
	}

	active, err := noteService.CreateNote(1, "活动笔记", "内容", &tag.ID)
	if err != nil {
		t.Fatalf("创建笔记失败: %v", err)
	}
	trashed, err := noteService.CreateNote(1, "回收站笔记", "内容", &tag.ID)
	if err != nil {
		t.Fatalf("创建笔记失败: %v", err)
	}
	if err := noteService.MoveToTrash(1, trashed.ID); err != nil {
		t.Fatalf("移入回收站失败: %v", err)
	}

	if err := service.DeleteTag(1, tag.ID); err != nil {
		t.Fatalf("删除标签失败: %v", err)
	}

	// 标签已删除
	tags, err := service.GetUserTags(1)
	if err != nil {
		t.Fatalf("查询标签失败: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("标签应该已被删除: 剩余 %d 个", len(tags))
	}

	// 笔记本身保留，引用被清除
	got, err := noteService.GetNoteByID(1, active.ID)
	if err != nil {
		t.Fatalf("查询笔记失败: %v", err)
	}
	if got.TagID != nil {
		t.Error("活动笔记的标签引用应该被清除")
	}

	got, err = noteService.GetNoteByID(1, trashed.ID)
	if err != nil {
		t.Fatalf("查询笔记失败: %v", err)
	}
	if got.TagID != nil {
		t.Error("回收站笔记的标签引用也应该被清除")
	}

	// 删除不存在的标签
	if err := service.DeleteTag(1, "no-such-tag"); err == nil {
		t.Error("删除不存在的标签应该返回错误")
	}
}

// TestDeleteUserTags 测试删除用户的全部标签
func TestDeleteUserTags(t *testing.T) {
	service, _ := setupTagService(t)

	if _, err := service.CreateTag(1, "标签一"); err != nil {
		t.Fatalf("创建标签失败: %v", err)
	}
	if _, err := service.CreateTag(1, "标签二"); err != nil {
		t.Fatalf("创建标签失败: %v", err)
	}
	if _, err := service.CreateTag(2, "别人的标签"); err != nil {
		t.Fatalf("创建标签失败: %v", err)
	}

	if err := service.DeleteUserTags(1); err != nil {
		t.Fatalf("删除用户标签失败: %v", err)
	}

	mine, err := service.GetUserTags(1)
	if err != nil {
		t.Fatalf("查询标签失败: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("用户1的标签应该全部被删除: 剩余 %d 个", len(mine))
	}

	others, err := service.GetUserTags(2)
	if err != nil {
		t.Fatalf("查询标签失败: %v", err)
	}
	if len(others) != 1 {
		t.Errorf("其他用户的标签不应受影响: 得到 %d 个", len(others))
	}
}
