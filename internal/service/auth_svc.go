package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"techmart/internal/middleware"
	"techmart/internal/model"
	"techmart/internal/repository"
)

// ==================== AuthService ====================

// AuthService 登录注册与令牌签发
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

// Login 邮箱 + 密码登录，返回用户与 access token
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: 邮箱或密码错误", ErrUnauthorized)
	}
	if !user.IsEnabled {
		return nil, "", fmt.Errorf("%w: 账号已被禁用", ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", fmt.Errorf("%w: 邮箱或密码错误", ErrUnauthorized)
	}

	token, err := middleware.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("签发 token 失败: %w", err)
	}
	return user, token, nil
}

// Register 注册普通用户
func (s *AuthService) Register(ctx context.Context, name, email, password, mobile string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: 姓名和邮箱不能为空", ErrInvalid)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: 密码至少 6 位", ErrInvalid)
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: 邮箱已被注册", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		MobileNumber: mobile,
		Role:         model.RoleUser,
		IsEnabled:    true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID 当前用户信息
func (s *AuthService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
