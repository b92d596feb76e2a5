package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ==================== 接口定义 ====================

// StorageProvider 图片存储提供者接口
type StorageProvider interface {
	// Upload 上传文件，返回公开访问 URL
	Upload(ctx context.Context, data []byte, filename string, contentType string) (url string, err error)
	// Delete 删除文件
	Delete(ctx context.Context, url string) error
}

// ==================== 配置 ====================

// StorageConfig 存储配置
type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	CDNDomain string // 静态资源域名（可选）
	BasePath  string // 对象键前缀
	LocalDir  string // local 模式落盘目录
	LocalURL  string // local 模式对外 URL 前缀
}

// ==================== StorageService ====================

// StorageService 存储服务，包装 StorageProvider
type StorageService struct {
	provider StorageProvider
	config   *StorageConfig
}

// NewStorageService 按配置创建存储服务
func NewStorageService(cfg *StorageConfig) (*StorageService, error) {
	var (
		provider StorageProvider
		err      error
	)
	switch cfg.Provider {
	case "s3":
		provider, err = newS3Storage(cfg)
	case "local":
		provider, err = newLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &StorageService{provider: provider, config: cfg}, nil
}

// Upload 上传文件
func (s *StorageService) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	return s.provider.Upload(ctx, data, filename, contentType)
}

// Delete 删除文件
func (s *StorageService) Delete(ctx context.Context, url string) error {
	return s.provider.Delete(ctx, url)
}

// objectKey 生成不冲突的对象键：前缀/日期/uuid+扩展名
func objectKey(basePath, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("%s/%s/%s%s",
		strings.Trim(basePath, "/"),
		time.Now().Format("200601"),
		uuid.NewString(), ext)
	return strings.TrimPrefix(name, "/")
}

// ==================== S3 实现 ====================

type s3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	cdnDomain string
	basePath  string
}

func newS3Storage(cfg *StorageConfig) (*s3Storage, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("S3 存储缺少 bucket/region 配置")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}
	return &s3Storage{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		cdnDomain: cfg.CDNDomain,
		basePath:  cfg.BasePath,
	}, nil
}

func (s *s3Storage) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	key := objectKey(s.basePath, filename)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("S3 上传失败: %w", err)
	}
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimSuffix(s.cdnDomain, "/"), key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *s3Storage) Delete(ctx context.Context, url string) error {
	key := s.keyFromURL(url)
	if key == "" {
		return fmt.Errorf("无法从 URL 解析对象键: %s", url)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *s3Storage) keyFromURL(url string) string {
	idx := strings.Index(url, "://")
	if idx < 0 {
		return ""
	}
	rest := url[idx+3:]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return ""
	}
	return rest[slash+1:]
}

// ==================== 本地实现（开发环境） ====================

type localStorage struct {
	dir      string
	urlBase  string
	basePath string
}

func newLocalStorage(cfg *StorageConfig) (*localStorage, error) {
	if cfg.LocalDir == "" {
		return nil, fmt.Errorf("local 存储缺少目录配置")
	}
	if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
		return nil, err
	}
	return &localStorage{
		dir:      cfg.LocalDir,
		urlBase:  strings.TrimSuffix(cfg.LocalURL, "/"),
		basePath: cfg.BasePath,
	}, nil
}

func (l *localStorage) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	key := objectKey(l.basePath, filename)
	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return l.urlBase + "/" + key, nil
}

func (l *localStorage) Delete(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, l.urlBase+"/") {
		return fmt.Errorf("URL 不属于本地存储: %s", url)
	}
	key := strings.TrimPrefix(url, l.urlBase+"/")
	return os.Remove(filepath.Join(l.dir, filepath.FromSlash(key)))
}
