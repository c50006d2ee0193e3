package database

import (
	"time"
)

// Note 笔记
// 软删除：IsDeleted=true 表示进入回收站，客户端视为独立集合
type Note struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"-"`
	Title         string     `gorm:"size:255" json:"title"`
	Content       string     `gorm:"type:text" json:"content"` // 富文本HTML
	IsPinned      bool       `gorm:"default:false" json:"is_pinned"`
	TagID         *string    `gorm:"size:36;index" json:"tag_id"` // 弱引用：删除标签只清引用
	IsDeleted     bool       `gorm:"index;default:false" json:"is_deleted"`
	DeletedNoteAt *time.Time `json:"deleted_at"` // 进入回收站的时间
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateNoteRequest 创建笔记请求
type CreateNoteRequest struct {
	Title   string  `json:"title" binding:"required"`
	Content string  `json:"content"`
	TagID   *string `json:"tag_id"`
}

// Tag 标签，归属单个用户
// 同名判断在服务层做（大小写不敏感），数据库不加约束
type Tag struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTagRequest 创建标签请求
type CreateTagRequest struct {
	Name string `json:"name" binding:"required"`
}
