package service

import (
	"context"
	"fmt"
	"strings"

	"techmart/internal/model"
	"techmart/internal/repository"
	"techmart/pkg/listing"
)

// ==================== UserService ====================

// UserService 用户管理（管理端）
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// AdminUserQuery 管理端用户列表查询条件
type AdminUserQuery struct {
	Search    string      // 姓名/邮箱/手机号 模糊匹配
	Role      *model.Role // 角色过滤
	IsEnabled *bool       // 启用状态过滤
	SortKey   string      // name_asc | name_desc | date_asc | date_desc
	Page      int
	PageSize  int
}

// List 管理端用户列表：全量加载后用通用列表引擎过滤、排序、分页
func (s *UserService) List(ctx context.Context, q AdminUserQuery) (*listing.Result[model.User], error) {
	users, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var preds []listing.Predicate[model.User]
	if kw := strings.ToLower(strings.TrimSpace(q.Search)); kw != "" {
		preds = append(preds, func(u model.User) bool {
			return strings.Contains(strings.ToLower(u.Name), kw) ||
				strings.Contains(strings.ToLower(u.Email), kw) ||
				strings.Contains(u.MobileNumber, kw)
		})
	}
	if q.Role != nil {
		role := *q.Role
		preds = append(preds, func(u model.User) bool { return u.Role == role })
	}
	if q.IsEnabled != nil {
		enabled := *q.IsEnabled
		preds = append(preds, func(u model.User) bool { return u.IsEnabled == enabled })
	}

	result := listing.Apply(users, listing.Query[model.User]{
		Predicates: preds,
		Sort:       userSortLess(q.SortKey),
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	return &result, nil
}

// userSortLess 用户排序规则，默认按注册时间倒序
func userSortLess(key string) listing.Less[model.User] {
	switch key {
	case "name_asc":
		return func(a, b model.User) bool { return a.Name < b.Name }
	case "name_desc":
		return func(a, b model.User) bool { return a.Name > b.Name }
	case "date_asc":
		return func(a, b model.User) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default: // date_desc
		return func(a, b model.User) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
}

// GetByID 用户详情
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateStatus 启用 / 禁用账号
func (s *UserService) UpdateStatus(ctx context.Context, id int64, enabled bool) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsEnabled == enabled {
		return user, nil
	}
	if err := s.userRepo.UpdateFields(ctx, id, map[string]interface{}{"is_enabled": enabled}); err != nil {
		return nil, err
	}
	user.IsEnabled = enabled
	return user, nil
}

// UpdateRole 调整账号角色
func (s *UserService) UpdateRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, fmt.Errorf("%w: 未知角色 %s", ErrInvalid, role)
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	if err := s.userRepo.UpdateFields(ctx, id, map[string]interface{}{"role": role}); err != nil {
		return nil, err
	}
	user.Role = role
	return user, nil
}

// UpdateProfile 用户更新自己的资料
func (s *UserService) UpdateProfile(ctx context.Context, id int64, name, mobile, profileImage string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
		user.Name = name
	}
	if mobile != "" {
		updates["mobile_number"] = mobile
		user.MobileNumber = mobile
	}
	if profileImage != "" {
		updates["profile_image"] = profileImage
		user.ProfileImage = profileImage
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.userRepo.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}
	return user, nil
}
