package Config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SecretKey   string `mapstructure:"SECRET_KEY"`
	TokenExpiry int    `mapstructure:"TOKEN_EXPIRY_MINUTES"`

	// AI服务配置（OpenAI兼容接口）
	AIAPIKey  string `mapstructure:"AI_API_KEY"`
	AIBaseURL string `mapstructure:"AI_BASE_URL"`

	// Redis配置（聊天记录缓存，可选）
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// 对象存储配置（MinIO）
	StorageEndpoint  string `mapstructure:"STORAGE_ENDPOINT"`
	StorageAccessKey string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `mapstructure:"STORAGE_SECRET_KEY"`
	StorageUseSSL    bool   `mapstructure:"STORAGE_USE_SSL"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`
	StorageConfig    string `mapstructure:"STORAGE_CONFIG"`

	// 服务级凭证：仅服务端持有，配置后才允许删除账号身份记录
	ServiceKey string `mapstructure:"SERVICE_KEY"`
}

var Cfg Config

func InitConfig() error {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// 设置默认值
	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("DATABASE_URL", "panote.db")
	viper.SetDefault("TOKEN_EXPIRY_MINUTES", 1440) // 24小时
	viper.SetDefault("AI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("STORAGE_ENDPOINT", "localhost:9000")
	viper.SetDefault("STORAGE_PUBLIC_URL", "http://localhost:9000")
	viper.SetDefault("STORAGE_CONFIG", "storage.yaml")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件未找到，退回环境变量
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}

	// 必须配置项验证
	if Cfg.SecretKey == "" {
		return errors.New("SECRET_KEY 必须配置")
	}
	if Cfg.AIAPIKey == "" {
		return errors.New("AI_API_KEY 必须配置")
	}
	return nil
}
