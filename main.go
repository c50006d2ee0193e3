package main

import (
	"log"

	"panote/Config"
	"panote/Route"
	"panote/database"
	AIService "panote/service/AI"
	AuthService "panote/service/Auth"
	ChatService "panote/service/Chat"
	NoteService "panote/service/Note"
	StorageService "panote/service/Storage"
	TagService "panote/service/Tag"
)

func main() {
	// 初始化配置
	if err := Config.InitConfig(); err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	// 初始化数据库
	if err := database.InitDB(Config.Cfg.DatabaseURL); err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}

	// 初始化Redis（失败时降级，聊天缓存不可用）
	_ = database.InitRedis(Config.Cfg.RedisAddr, Config.Cfg.RedisPassword, Config.Cfg.RedisDB)

	// 初始化用户服务并启动验证码清理任务
	userService, err := AuthService.NewUserService(database.DB)
	if err != nil {
		log.Fatalf("用户服务初始化失败: %v", err)
	}
	userService.StartCleanupTask()

	// 初始化业务服务
	noteService, err := NoteService.NewNoteService(database.DB)
	if err != nil {
		log.Fatalf("笔记服务初始化失败: %v", err)
	}
	tagService, err := TagService.NewTagService(database.DB, noteService)
	if err != nil {
		log.Fatalf("标签服务初始化失败: %v", err)
	}
	cacheService := ChatService.NewCacheService(database.GetRedis())
	messageService, err := ChatService.NewMessageService(database.DB, cacheService)
	if err != nil {
		log.Fatalf("聊天服务初始化失败: %v", err)
	}

	// 初始化账号注销服务
	if _, err := AuthService.NewAccountService(
		userService, noteService, tagService, messageService, Config.Cfg.ServiceKey,
	); err != nil {
		log.Fatalf("账号服务初始化失败: %v", err)
	}

	// 初始化AI分发器
	aiClient := AIService.NewClient(Config.Cfg.AIAPIKey, Config.Cfg.AIBaseURL)
	if _, err := AIService.NewDispatcher(aiClient); err != nil {
		log.Fatalf("AI服务初始化失败: %v", err)
	}

	// 初始化对象存储
	policy, err := StorageService.LoadUploadPolicy(Config.Cfg.StorageConfig)
	if err != nil {
		log.Fatalf("加载上传策略失败: %v", err)
	}
	if _, err := StorageService.NewStorageService(
		Config.Cfg.StorageEndpoint,
		Config.Cfg.StorageAccessKey,
		Config.Cfg.StorageSecretKey,
		Config.Cfg.StorageUseSSL,
		Config.Cfg.StoragePublicURL,
		policy,
	); err != nil {
		log.Fatalf("存储服务初始化失败: %v", err)
	}

	// 启动路由
	log.Println("服务器启动中...")
	Route.ApiRoute()
}
