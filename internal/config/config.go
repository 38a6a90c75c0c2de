package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/spf13/viper"
)

// DefaultToolName 默认工具名,也是会话目录名前缀和扫描排除标记
const DefaultToolName = "static-html-output"

// Config 应用程序配置
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Export  ExportConfig  `mapstructure:"export"`
	Content ContentConfig `mapstructure:"content"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SiteConfig 被导出站点的地址和目录
type SiteConfig struct {
	BaseURL    string `mapstructure:"base_url"`    // 站点地址,规范化为以/结尾
	ThemeDir   string `mapstructure:"theme_dir"`   // 当前主题目录
	ThemeURL   string `mapstructure:"theme_url"`   // 主题目录对应的URL
	UploadsDir string `mapstructure:"uploads_dir"` // 上传目录
	UploadsURL string `mapstructure:"uploads_url"` // 上传目录对应的URL
}

// ExportConfig 导出会话与爬取列表配置
type ExportConfig struct {
	ToolName           string   `mapstructure:"tool_name"`
	WorkingDir         string   `mapstructure:"working_dir"` // 为空时使用上传目录
	ExcludedExtensions []string `mapstructure:"excluded_extensions"`
	ExcludedMarkers    []string `mapstructure:"excluded_markers"`
	MaxScanDepth       int      `mapstructure:"max_scan_depth"`
	MinFreeDiskMB      int      `mapstructure:"min_free_disk_mb"`
	AdditionalURLs     string   `mapstructure:"additional_urls"` // 换行分隔,最终构建时并入
	ShowProgress       bool     `mapstructure:"show_progress"`
}

// ContentConfig 内容仓库配置
type ContentConfig struct {
	Database           string `mapstructure:"database"`
	PermalinkStructure string `mapstructure:"permalink_structure"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// LoadConfig 加载配置文件
// configPath为空时搜索默认位置,找不到配置文件时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".staticexport"))
		}
	}

	// 环境变量覆盖: STATICEXPORT_SITE_BASE_URL 等
	v.SetEnvPrefix("STATICEXPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: fmt.Errorf("配置绑定失败: %w", err)}
	}

	config.normalize()
	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 站点配置默认值(AutomaticEnv只覆盖已知的键)
	v.SetDefault("site.base_url", "")
	v.SetDefault("site.theme_dir", "")
	v.SetDefault("site.theme_url", "")
	v.SetDefault("site.uploads_dir", "")
	v.SetDefault("site.uploads_url", "")

	// 导出配置默认值
	v.SetDefault("export.tool_name", DefaultToolName)
	v.SetDefault("export.working_dir", "")
	v.SetDefault("export.excluded_extensions", []string{"php", "phtml", "tpl"})
	v.SetDefault("export.excluded_markers", []string{"previous-export"})
	v.SetDefault("export.max_scan_depth", 64)
	v.SetDefault("export.min_free_disk_mb", 50)
	v.SetDefault("export.additional_urls", "")
	v.SetDefault("export.show_progress", false)

	// 内容仓库默认值
	v.SetDefault("content.database", "content.db")
	v.SetDefault("content.permalink_structure", "/%year%/%monthnum%/%day%/%postname%/")

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// normalize 规范化配置值
func (c *Config) normalize() {
	c.Site.BaseURL = NormalizeBaseURL(c.Site.BaseURL)
	if c.Export.ToolName = strings.TrimSpace(c.Export.ToolName); c.Export.ToolName == "" {
		c.Export.ToolName = DefaultToolName
	}
	c.Site.ThemeDir = absDir(c.Site.ThemeDir)
	c.Site.UploadsDir = absDir(c.Site.UploadsDir)
	if c.Export.WorkingDir == "" {
		c.Export.WorkingDir = c.Site.UploadsDir
	}
	c.Export.WorkingDir = absDir(c.Export.WorkingDir)
}

// absDir 目录转为绝对路径,会话指针记录的必须是绝对路径
func absDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// NormalizeBaseURL 去掉多余的末尾斜杠后补一个,空值保持为空
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.TrimRight(raw, "/") + "/"
}

// Validate 验证构建爬取列表所需的配置
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return &models.ConfigurationError{Field: "site.base_url", Reason: "站点地址不能为空"}
	}
	if err := models.ValidateURL(c.Site.BaseURL); err != nil {
		return &models.ConfigurationError{Field: "site.base_url", Reason: err.Error()}
	}
	if c.Site.UploadsDir == "" {
		return &models.ConfigurationError{Field: "site.uploads_dir", Reason: "上传目录不能为空"}
	}
	if err := models.ValidateURL(c.Site.UploadsURL); err != nil {
		return &models.ConfigurationError{Field: "site.uploads_url", Reason: err.Error()}
	}
	if c.Site.ThemeDir != "" {
		if err := models.ValidateURL(c.Site.ThemeURL); err != nil {
			return &models.ConfigurationError{Field: "site.theme_url", Reason: err.Error()}
		}
	}
	if c.Export.WorkingDir == "" {
		return &models.ConfigurationError{Field: "export.working_dir", Reason: "工作目录不能为空"}
	}
	if strings.ContainsAny(c.Export.ToolName, `/\`) {
		return &models.ConfigurationError{Field: "export.tool_name", Reason: "工具名不能包含路径分隔符"}
	}
	return nil
}

// ScanMarkers 扫描时排除的路径标记: 工具名 + 配置的其它标记
func (c *Config) ScanMarkers() []string {
	markers := []string{c.Export.ToolName}
	for _, m := range c.Export.ExcludedMarkers {
		if m != "" && m != c.Export.ToolName {
			markers = append(markers, m)
		}
	}
	return markers
}
