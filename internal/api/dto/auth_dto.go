package dto

// ==================== 请求 DTO ====================

// LoginReq 登录请求
type LoginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterReq 注册请求
type RegisterReq struct {
	Name         string `json:"name" binding:"required,max=100"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	MobileNumber string `json:"mobileNumber"`
}

// UpdateProfileReq 更新个人资料请求
type UpdateProfileReq struct {
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	ProfileImage string `json:"profileImage"`
}

// ==================== 响应 DTO ====================

// LoginResp 登录响应
type LoginResp struct {
	Token string   `json:"token"`
	User  UserResp `json:"user"`
}

// UserResp 用户信息
type UserResp struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	ProfileImage string `json:"profileImage"`
	Role         string `json:"role"`
	IsEnabled    bool   `json:"isEnabled"`
	CreatedAt    string `json:"createdAt"`
}
