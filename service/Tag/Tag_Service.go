package Tag

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"panote/database"
	NoteService "panote/service/Note"
	"strings"
)

// TagServiceInterface 标签服务接口
type TagServiceInterface interface {
	// CreateTag 同名标签（大小写不敏感）直接复用已有记录，不创建重复项
	CreateTag(userID uint, name string) (*database.Tag, error)
	GetUserTags(userID uint) ([]database.Tag, error)
	DeleteTag(userID uint, id string) error
	DeleteUserTags(userID uint) error
}

var GlobalTagService TagServiceInterface

type TagService struct {
	db          *gorm.DB
	noteService NoteService.NoteServiceInterface
}

func NewTagService(db *gorm.DB, noteService NoteService.NoteServiceInterface) (TagServiceInterface, error) {
	if db == nil {
		return nil, errors.New("数据库连接不能为空")
	}
	if noteService == nil {
		return nil, errors.New("笔记服务不能为空")
	}
	service := &TagService{db: db, noteService: noteService}
	GlobalTagService = service
	return service, nil
}

// CreateTag 创建标签
func (s *TagService) CreateTag(userID uint, name string) (*database.Tag, error) {
	if userID == 0 {
		return nil, errors.New("用户ID不能为空")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("标签名不能为空")
	}

	// 大小写不敏感查重，命中则复用
	var existing database.Tag
	err := s.db.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}

	tag := &database.Tag{
		ID:     uuid.New().String(),
		UserID: userID,
		Name:   name,
	}
	if err := s.db.Create(tag).Error; err != nil {
		return nil, fmt.Errorf("创建标签失败: %w", err)
	}
	return tag, nil
}

// GetUserTags 获取用户的所有标签
func (s *TagService) GetUserTags(userID uint) ([]database.Tag, error) {
	var tags []database.Tag
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("查询标签失败: %w", err)
	}
	return tags, nil
}

// DeleteTag 删除标签，并清除笔记（含回收站）上对它的引用
func (s *TagService) DeleteTag(userID uint, id string) error {
	var tag database.Tag
	err := s.db.Where("user_id = ? AND id = ?", userID, id).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("标签不存在")
		}
		return fmt.Errorf("查询标签失败: %w", err)
	}

	// 先清引用再删标签，失败时不会留下悬空引用
	if err := s.noteService.ClearTagRefs(userID, id); err != nil {
		return err
	}
	if err := s.db.Delete(&tag).Error; err != nil {
		return fmt.Errorf("删除标签失败: %w", err)
	}
	return nil
}

// DeleteUserTags 删除用户的所有标签，用于注销账号
func (s *TagService) DeleteUserTags(userID uint) error {
	if userID == 0 {
		return errors.New("用户ID不能为空")
	}
	if err := s.db.Where("user_id = ?", userID).Delete(&database.Tag{}).Error; err != nil {
		return fmt.Errorf("删除用户标签失败: %w", err)
	}
	return nil
}
