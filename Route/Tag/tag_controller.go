package Tag

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"panote/database"
	TagService "panote/service/Tag"
)

// SetupTagRoutes 设置标签路由
func SetupTagRoutes(api *gin.RouterGroup) {
	tags := api.Group("/tags")
	{
		tags.GET("", GetTags)
		tags.POST("", CreateTag)
		tags.DELETE("/:id", DeleteTag)
	}
}

// GetTags 获取当前用户的所有标签
func GetTags(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	tags, err := TagService.GlobalTagService.GetUserTags(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, tags)
}

// CreateTag 创建标签，同名（忽略大小写）时返回已有标签
func CreateTag(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	var req database.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "参数错误: " + err.Error(),
		})
		return
	}

	tag, err := TagService.GlobalTagService.CreateTag(userID.(uint), req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, tag)
}

// DeleteTag 删除标签，同时清除所有笔记上的引用
func DeleteTag(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}

	id := c.Param("id")
	if err := TagService.GlobalTagService.DeleteTag(userID.(uint), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "删除成功",
	})
}
