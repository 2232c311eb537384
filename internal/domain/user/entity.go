package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleReader Role = "reader" // 读者:借阅、归还、缴费
	RoleAdmin  Role = "admin"  // 管理员:图书维护、补货、核销
)

// User 用户实体（聚合根）
// 密码以bcrypt哈希存储,领域实体不依赖GORM tag
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname string, role Role) *User {
	if role == "" {
		role = RoleReader
	}
	return &User{
		Email:    email,
		Password: hashedPassword,
		Nickname: nickname,
		Role:     role,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
