package Route

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"log"
	"net/http"
	"panote/Config"
	AIRoute "panote/Route/AI"
	AuthRoute "panote/Route/Auth"
	ChatRoute "panote/Route/Chat"
	NoteRoute "panote/Route/Note"
	StorageRoute "panote/Route/Storage"
	TagRoute "panote/Route/Tag"
	"strings"
	"time"
)

// SetupRouter 构建路由
func SetupRouter() *gin.Engine {
	r := gin.Default()

	// 配置CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8080", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           120 * time.Hour,
	}))

	// 静态文件服务
	r.Static("/static", "./static")

	// API 路由
	api := r.Group("/api")

	// 公开路由
	api.POST("/register", AuthRoute.Register)
	api.POST("/login", AuthRoute.Login)
	api.POST("/logout", AuthRoute.Logout)

	// 验证码相关路由
	api.POST("/auth/send-code", AuthRoute.SendVerificationCode)
	api.POST("/auth/verify-code", AuthRoute.VerifyCode)
	api.POST("/auth/reset-password", AuthRoute.ResetPassword)

	// 存储桶初始化
	StorageRoute.SetupStorageAdminRoutes(r)

	// 需要认证的路由
	auth := api.Group("/")
	auth.Use(AuthRoute.AuthMiddleware())

	// 用户相关
	{
		auth.GET("/profile", AuthRoute.GetProfile)
		auth.POST("/update-password", AuthRoute.UpdatePassword)
		auth.DELETE("/account", AuthRoute.DeleteAccount)
	}

	// 业务路由
	NoteRoute.SetupNoteRoutes(auth)
	TagRoute.SetupTagRoutes(auth)
	ChatRoute.SetupChatRoutes(auth)
	AIRoute.SetupAIRoutes(auth)
	StorageRoute.SetupStorageRoutes(auth)

	// 前端路由 - 支持SPA
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API not found"})
			return
		}

		// 返回前端应用
		c.File("./web/index.html")
	})

	return r
}

// ApiRoute 启动HTTP服务
func ApiRoute() {
	r := SetupRouter()
	if err := r.Run(":" + Config.Cfg.ServerPort); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}
