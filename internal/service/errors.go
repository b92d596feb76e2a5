package service

import "errors"

// 业务错误哨兵，controller 据此映射 HTTP 状态码
var (
	// ErrInvalid 参数/业务规则校验失败 → 400
	ErrInvalid = errors.New("invalid")
	// ErrConflict 资源冲突（SKU 重复、非法状态迁移等） → 409
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized 凭证无效 → 401
	ErrUnauthorized = errors.New("unauthorized")
)
