package Storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"gopkg.in/yaml.v3"
)

// UploadPolicy 上传策略配置，从YAML文件加载
type UploadPolicy struct {
	Bucket           string   `yaml:"bucket"`
	MaxFileSize      int64    `yaml:"max_file_size"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types"`
}

// DefaultUploadPolicy 配置文件缺失时的默认策略
func DefaultUploadPolicy() *UploadPolicy {
	return &UploadPolicy{
		Bucket:      "images",
		MaxFileSize: 10 * 1024 * 1024, // 10MB
		AllowedMimeTypes: []string{
			"image/png", "image/jpeg", "image/gif", "image/webp",
		},
	}
}

// LoadUploadPolicy 从YAML文件加载上传策略
func LoadUploadPolicy(configPath string) (*UploadPolicy, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("上传策略文件 %s 不存在，使用默认策略", configPath)
			return DefaultUploadPolicy(), nil
		}
		return nil, err
	}

	policy := DefaultUploadPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("解析上传策略失败: %w", err)
	}
	return policy, nil
}

// StorageServiceInterface 对象存储服务接口
// 使用服务级凭证访问存储后端，凭证不出服务端
type StorageServiceInterface interface {
	// EnsureBucket 创建存储桶，已存在时返回 created=false
	EnsureBucket(ctx context.Context) (created bool, err error)
	// UploadImage 上传图片并返回公开访问地址
	UploadImage(ctx context.Context, filename, contentType string, reader io.Reader, size int64) (string, error)
	Policy() *UploadPolicy
}

var GlobalStorageService StorageServiceInterface

type storageService struct {
	client    *minio.Client
	policy    *UploadPolicy
	publicURL string
}

// NewStorageService 创建对象存储服务
func NewStorageService(endpoint, accessKey, secretKey string, useSSL bool, publicURL string, policy *UploadPolicy) (StorageServiceInterface, error) {
	if endpoint == "" {
		return nil, errors.New("存储服务地址不能为空")
	}
	if policy == nil {
		policy = DefaultUploadPolicy()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建存储客户端失败: %w", err)
	}

	service := &storageService{
		client:    client,
		policy:    policy,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
	GlobalStorageService = service
	return service, nil
}

func (s *storageService) Policy() *UploadPolicy {
	return s.policy
}

// EnsureBucket 创建存储桶并设置公开读策略
func (s *storageService) EnsureBucket(ctx context.Context) (bool, error) {
	err := s.client.MakeBucket(ctx, s.policy.Bucket, minio.MakeBucketOptions{})
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return false, nil
		}
		return false, fmt.Errorf("创建存储桶失败: %w", err)
	}

	// 公开读策略，上传后的图片直接通过URL访问
	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, s.policy.Bucket)
	if err := s.client.SetBucketPolicy(ctx, s.policy.Bucket, policy); err != nil {
		log.Printf("设置存储桶公开读策略失败: %v", err)
	}

	return true, nil
}

// SanitizeFilename 清洗原始文件名，只保留字母数字和点号
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildObjectName 时间戳加清洗后的原文件名，避免同名冲突
func BuildObjectName(originalName string) string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), SanitizeFilename(originalName))
}

// UploadImage 上传图片
func (s *storageService) UploadImage(ctx context.Context, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if filename == "" {
		return "", errors.New("文件名不能为空")
	}

	_, err := s.client.PutObject(ctx, s.policy.Bucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("上传文件失败: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.policy.Bucket, filename), nil
}
