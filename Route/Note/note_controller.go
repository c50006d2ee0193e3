package Note

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"panote/database"
	NoteService "panote/service/Note"
)

// SetupNoteRoutes 设置笔记与回收站路由
func SetupNoteRoutes(api *gin.RouterGroup) {
	notes := api.Group("/notes")
	{
		notes.GET("", GetNotes)
		notes.POST("", CreateNote)
		notes.PATCH("/:id", UpdateNote)
		notes.DELETE("/:id", MoveToTrash)
	}

	trash := api.Group("/trash")
	{
		trash.GET("", GetTrash)
		trash.POST("/:id/restore", RestoreNote)
		trash.DELETE("/:id", PurgeNote)
	}
}

// GetNotes 获取当前用户的全部未删除笔记
func GetNotes(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	notes, err := NoteService.GlobalNoteService.GetActiveNotes(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, notes)
}

// CreateNote 创建笔记
func CreateNote(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	var req database.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "参数错误: " + err.Error(),
		})
		return
	}

	note, err := NoteService.GlobalNoteService.CreateNote(userID.(uint), req.Title, req.Content, req.TagID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, note)
}

// updatableNoteFields PATCH请求允许更新的字段白名单
var updatableNoteFields = map[string]bool{
	"title":      true,
	"content":    true,
	"tag_id":     true,
	"is_pinned":  true,
	"is_deleted": true,
}

// UpdateNote 部分更新笔记
// 客户端只传变更的字段；tag_id 传 null 表示清除标签引用
func UpdateNote(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	id := c.Param("id")

	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "参数错误: " + err.Error(),
		})
		return
	}

	updates := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		if updatableNoteFields[key] {
			updates[key] = value
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "没有可更新的字段",
		})
		return
	}

	// 恢复/删除状态切换时同步维护删除时间
	if deleted, ok := updates["is_deleted"].(bool); ok && !deleted {
		updates["deleted_note_at"] = nil
	}

	note, err := NoteService.GlobalNoteService.UpdateNote(userID.(uint), id, updates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, note)
}

// MoveToTrash 将笔记移入回收站（软删除）
func MoveToTrash(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	id := c.Param("id")
	if err := NoteService.GlobalNoteService.MoveToTrash(userID.(uint), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "已移入回收站",
	})
}

// GetTrash 获取回收站中的笔记
func GetTrash(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	notes, err := NoteService.GlobalNoteService.GetTrashedNotes(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, notes)
}

// RestoreNote 从回收站恢复笔记
func RestoreNote(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	id := c.Param("id")
	if err := NoteService.GlobalNoteService.RestoreNote(userID.(uint), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "恢复成功",
	})
}

// PurgeNote 彻底删除回收站中的笔记
func PurgeNote(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	id := c.Param("id")
	if err := NoteService.GlobalNoteService.PurgeNote(userID.(uint), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "删除成功",
	})
}
