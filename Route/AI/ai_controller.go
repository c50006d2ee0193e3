package AI

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"panote/database"
	AIService "panote/service/AI"
)

// SetupAIRoutes 设置AI接口路由
func SetupAIRoutes(api *gin.RouterGroup) {
	ai := api.Group("/ai")
	{
		ai.POST("/chat", ChatCompletion)
		ai.POST("/vision", ExtractTextFromImage)
	}
}

// ChatCompletion 生成聊天回复
// 候选模型全部失败时返回500，附带最后一次失败的信息
func ChatCompletion(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}
	_ = userID

	var req database.AIChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "messages 字段缺失或格式错误",
		})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "对话历史不能为空",
		})
		return
	}

	text, err := AIService.GlobalDispatcher.ChatCompletion(c.Request.Context(), req.Messages)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   err.Error(),
			"details": "all candidate models failed",
		})
		return
	}

	c.JSON(http.StatusOK, database.AITextResponse{Text: text})
}

// ExtractTextFromImage 从图片提取文字
func ExtractTextFromImage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}
	_ = userID

	var req database.AIVisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "image 和 mimeType 不能为空",
		})
		return
	}

	text, err := AIService.GlobalDispatcher.ExtractTextFromImage(c.Request.Context(), req.Image, req.MimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   err.Error(),
			"details": "all candidate models failed",
		})
		return
	}

	c.JSON(http.StatusOK, database.AITextResponse{Text: text})
}
