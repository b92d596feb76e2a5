package dto

// ==================== 请求 DTO ====================

// AdminUserListReq 管理端用户列表查询
type AdminUserListReq struct {
	Search    string `form:"search"`
	Role      string `form:"role"`
	IsEnabled *bool  `form:"isEnabled"`
	SortKey   string `form:"sort"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// UpdateUserStatusReq 启用/禁用账号请求
type UpdateUserStatusReq struct {
	IsEnabled *bool `json:"isEnabled" binding:"required"`
}

// UpdateUserRoleReq 调整角色请求
type UpdateUserRoleReq struct {
	Role string `json:"role" binding:"required"`
}
