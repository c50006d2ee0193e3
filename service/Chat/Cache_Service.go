package Chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"panote/database"
)

// CacheServiceInterface 聊天记录缓存接口
// Redis不可用时全部降级为直接回源，不影响功能
type CacheServiceInterface interface {
	CacheTranscript(userID uint, messages []database.ChatMessage) error
	GetCachedTranscript(userID uint) ([]database.ChatMessage, error)
	InvalidateTranscript(userID uint)
}

var GlobalCacheService CacheServiceInterface

type CacheService struct {
	redisClient *redis.Client
	expiration  time.Duration
}

func NewCacheService(client *redis.Client) CacheServiceInterface {
	service := &CacheService{
		redisClient: client,
		expiration:  30 * time.Minute,
	}
	GlobalCacheService = service
	return service
}

func transcriptKey(userID uint) string {
	return fmt.Sprintf("transcript:%d", userID)
}

// CacheTranscript 缓存聊天记录
func (cs *CacheService) CacheTranscript(userID uint, messages []database.ChatMessage) error {
	if cs.redisClient == nil {
		return nil // 降级：直接返回成功
	}

	ctx := context.Background()
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return cs.redisClient.Set(ctx, transcriptKey(userID), data, cs.expiration).Err()
}

// GetCachedTranscript 从缓存获取聊天记录
func (cs *CacheService) GetCachedTranscript(userID uint) ([]database.ChatMessage, error) {
	if cs.redisClient == nil {
		return nil, errors.New("redis不可用")
	}

	ctx := context.Background()
	data, err := cs.redisClient.Get(ctx, transcriptKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	var messages []database.ChatMessage
	if err := json.Unmarshal([]byte(data), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// InvalidateTranscript 聊天记录缓存失效
func (cs *CacheService) InvalidateTranscript(userID uint) {
	if cs.redisClient == nil {
		return
	}

	ctx := context.Background()
	if err := cs.redisClient.Del(ctx, transcriptKey(userID)).Err(); err != nil {
		log.Printf("聊天缓存失效失败: %v", err)
	}
}
