package Storage

import (
	"github.com/gin-gonic/gin"
	"net/http"
	StorageService "panote/service/Storage"
)

// SetupStorageRoutes 设置上传路由（需要认证）
func SetupStorageRoutes(api *gin.RouterGroup) {
	api.POST("/upload", UploadFile)
}

// SetupStorageAdminRoutes 存储桶初始化路由
func SetupStorageAdminRoutes(r gin.IRouter) {
	r.GET("/api/storage-setup", SetupStorage)
}

// UploadFile 上传图片并返回公开访问地址
// 上传使用服务级存储凭证，凭证不参与任何鉴权判断
func UploadFile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "用户未认证",
		})
		return
	}
	_ = userID

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "未提供文件",
		})
		return
	}

	storage := StorageService.GlobalStorageService
	policy := storage.Policy()

	if fileHeader.Size > policy.MaxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "文件大小超出限制",
		})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	allowed := false
	for _, mimeType := range policy.AllowedMimeTypes {
		if contentType == mimeType {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "不支持的文件类型: " + contentType,
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "读取上传文件失败: " + err.Error(),
		})
		return
	}
	defer file.Close()

	objectName := StorageService.BuildObjectName(fileHeader.Filename)
	publicURL, err := storage.UploadImage(c.Request.Context(), objectName, contentType, file, fileHeader.Size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"publicUrl": publicURL,
	})
}

// SetupStorage 创建图片存储桶，已存在时也视为成功
func SetupStorage(c *gin.Context) {
	created, err := StorageService.GlobalStorageService.EnsureBucket(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	bucket := StorageService.GlobalStorageService.Policy().Bucket
	if created {
		c.JSON(http.StatusOK, gin.H{
			"message": "存储桶 " + bucket + " 创建成功",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "存储桶 " + bucket + " 已存在",
	})
}
