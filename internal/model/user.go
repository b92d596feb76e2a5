package model

// ==================== 角色 ====================

// Role 用户角色
type Role string

const (
	RoleUser         Role = "USER"
	RoleOrderStaff   Role = "ORDER_STAFF"
	RoleProductStaff Role = "PRODUCT_STAFF"
	RoleManager      Role = "MANAGER"
)

// ValidRole 校验角色是否合法
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleOrderStaff, RoleProductStaff, RoleManager:
		return true
	}
	return false
}

// ==================== 用户模型 ====================

// User 用户/员工
type User struct {
	BaseModel
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	MobileNumber string `gorm:"size:32" json:"mobileNumber,omitempty"`
	ProfileImage string `gorm:"size:500" json:"profileImage,omitempty"`
	Role         Role   `gorm:"size:32;index;default:USER" json:"role"`
	IsEnabled    bool   `gorm:"default:true" json:"isEnabled"`
}

func (User) TableName() string {
	return "users"
}
