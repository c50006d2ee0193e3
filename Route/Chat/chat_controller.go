package Chat

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"panote/database"
	ChatService "panote/service/Chat"
)

// SetupChatRoutes 设置聊天消息路由
func SetupChatRoutes(api *gin.RouterGroup) {
	messages := api.Group("/chat-messages")
	{
		messages.GET("", GetMessages)
		messages.POST("", CreateMessage)
	}
}

// GetMessages 获取当前用户的聊天记录，按创建时间升序
func GetMessages(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	messages, err := ChatService.GlobalMessageService.GetUserMessages(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, messages)
}

// CreateMessage 追加一条聊天消息
// content 和 attachments 同时为空时返回400
func CreateMessage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	var req database.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "参数错误: " + err.Error(),
		})
		return
	}
	if req.Content == "" && len(req.Attachments) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "消息内容和附件不能同时为空",
		})
		return
	}

	message, err := ChatService.GlobalMessageService.AppendMessage(
		userID.(uint), req.Role, req.Content, req.Attachments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, message)
}
