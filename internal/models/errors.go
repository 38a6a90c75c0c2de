package models

import (
	"errors"
	"fmt"
)

// ErrNoActiveSession 当前没有可用的归档会话指针
var ErrNoActiveSession = errors.New("没有活动的导出会话")

// ConfigurationError 必需的配置缺失或无法解析
// 出现时中止列表构建
type ConfigurationError struct {
	// Field 出错的配置项 (如 "site.base_url")
	Field string

	// Reason 错误原因
	Reason string
}

// Error 实现error接口
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %s", e.Field, e.Reason)
}

// RepositoryError 内容仓库查询失败
// 不自动重试,部分结果会悄悄漏掉整个站点分区
type RepositoryError struct {
	// Op 失败的仓库操作
	Op string

	// Cause 底层错误
	Cause error
}

// Error 实现error接口
func (e *RepositoryError) Error() string {
	return fmt.Sprintf("内容仓库错误 [%s]: %v", e.Op, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *RepositoryError) Unwrap() error {
	return e.Cause
}

// FilesystemError 目录创建、删除或记录写入失败
type FilesystemError struct {
	Op    string
	Path  string
	Cause error
}

// Error 实现error接口
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("文件系统错误 [%s %s]: %v", e.Op, e.Path, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *FilesystemError) Unwrap() error {
	return e.Cause
}

// ConfigError 配置文件错误
// 表示配置文件解析失败
type ConfigError struct {
	// FilePath 配置文件路径
	FilePath string

	// Cause 底层错误 (如viper.ConfigParseError)
	Cause error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
