package Note

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"panote/database"
)

// NoteServiceInterface 笔记服务接口
// 所有操作都按 UserID 限定范围，跨用户访问一律返回"笔记不存在"
type NoteServiceInterface interface {
	CreateNote(userID uint, title, content string, tagID *string) (*database.Note, error)
	GetActiveNotes(userID uint) ([]database.Note, error)
	GetTrashedNotes(userID uint) ([]database.Note, error)
	GetNoteByID(userID uint, id string) (*database.Note, error)
	UpdateNote(userID uint, id string, updates map[string]interface{}) (*database.Note, error)
	MoveToTrash(userID uint, id string) error
	RestoreNote(userID uint, id string) error
	PurgeNote(userID uint, id string) error
	ClearTagRefs(userID uint, tagID string) error
	DeleteUserNotes(userID uint) error
}

var GlobalNoteService NoteServiceInterface

type NoteService struct {
	db *gorm.DB
}

func NewNoteService(db *gorm.DB) (NoteServiceInterface, error) {
	if db == nil {
		return nil, errors.New("数据库连接不能为空")
	}
	service := &NoteService{db}
	GlobalNoteService = service
	return service, nil
}

// CreateNote 创建笔记
func (s *NoteService) CreateNote(userID uint, title, content string, tagID *string) (*database.Note, error) {
	if userID == 0 {
		return nil, errors.New("用户ID不能为空")
	}
	if title == "" {
		return nil, errors.New("标题不能为空")
	}

	note := &database.Note{
		ID:      uuid.New().String(),
		UserID:  userID,
		Title:   title,
		Content: content,
		TagID:   tagID,
	}
	if err := s.db.Create(note).Error; err != nil {
		return nil, fmt.Errorf("创建笔记失败: %w", err)
	}
	return note, nil
}

// GetActiveNotes 获取未删除的笔记
func (s *NoteService) GetActiveNotes(userID uint) ([]database.Note, error) {
	var notes []database.Note
	err := s.db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("updated_at DESC").Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("查询笔记失败: %w", err)
	}
	return notes, nil
}

// GetTrashedNotes 获取回收站中的笔记
func (s *NoteService) GetTrashedNotes(userID uint) ([]database.Note, error) {
	var notes []database.Note
	err := s.db.Where("user_id = ? AND is_deleted = ?", userID, true).
		Order("deleted_note_at DESC").Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("查询回收站失败: %w", err)
	}
	return notes, nil
}

// GetNoteByID 根据ID获取笔记
func (s *NoteService) GetNoteByID(userID uint, id string) (*database.Note, error) {
	var note database.Note
	err := s.db.Where("user_id = ? AND id = ?", userID, id).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("笔记不存在")
		}
		return nil, fmt.Errorf("查询笔记失败: %w", err)
	}
	return &note, nil
}

// UpdateNote 更新笔记，updates 的键已由控制器白名单过滤
// 单次 Updates 调用，不会出现部分字段生效的中间状态
func (s *NoteService) UpdateNote(userID uint, id string, updates map[string]interface{}) (*database.Note, error) {
	if len(updates) == 0 {
		return nil, errors.New("更新内容不能为空")
	}

	result := s.db.Model(&database.Note{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("更新笔记失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errors.New("笔记不存在或无权限修改")
	}

	return s.GetNoteByID(userID, id)
}

// MoveToTrash 移入回收站（软删除）
func (s *NoteService) MoveToTrash(userID uint, id string) error {
	now := time.Now()
	result := s.db.Model(&database.Note{}).
		Where("user_id = ? AND id = ? AND is_deleted = ?", userID, id, false).
		Updates(map[string]interface{}{
			"is_deleted":      true,
			"deleted_note_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("移入回收站失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("笔记不存在")
	}
	return nil
}

// RestoreNote 从回收站恢复
func (s *NoteService) RestoreNote(userID uint, id string) error {
	result := s.db.Model(&database.Note{}).
		Where("user_id = ? AND id = ? AND is_deleted = ?", userID, id, true).
		Updates(map[string]interface{}{
			"is_deleted":      false,
			"deleted_note_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("恢复笔记失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("笔记不在回收站中")
	}
	return nil
}

// PurgeNote 彻底删除回收站中的笔记（硬删除）
func (s *NoteService) PurgeNote(userID uint, id string) error {
	result := s.db.Where("user_id = ? AND id = ? AND is_deleted = ?", userID, id, true).
		Delete(&database.Note{})
	if result.Error != nil {
		return fmt.Errorf("彻底删除笔记失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("笔记不在回收站中")
	}
	return nil
}

// ClearTagRefs 清除引用指定标签的所有笔记（含回收站）的标签引用
// 只清引用，不删笔记
func (s *NoteService) ClearTagRefs(userID uint, tagID string) error {
	err := s.db.Model(&database.Note{}).
		Where("user_id = ? AND tag_id = ?", userID, tagID).
		Update("tag_id", nil).Error
	if err != nil {
		return fmt.Errorf("清除标签引用失败: %w", err)
	}
	return nil
}

// DeleteUserNotes 删除用户的所有笔记（含回收站），用于注销账号
func (s *NoteService) DeleteUserNotes(userID uint) error {
	if userID == 0 {
		return errors.New("用户ID不能为空")
	}
	if err := s.db.Where("user_id = ?", userID).Delete(&database.Note{}).Error; err != nil {
		return fmt.Errorf("删除用户笔记失败: %w", err)
	}
	return nil
}
