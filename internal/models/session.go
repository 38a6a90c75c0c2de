package models

import (
	"encoding/json"
	"os"
	"time"
)

// ManifestFilename 会话目录内的清单文件名
const ManifestFilename = "session.json"

// RequestContext 发起导出的请求上下文
// 显式传入,不从全局状态读取
type RequestContext struct {
	// Actor 当前操作者标识(如登录名),可为空
	Actor string

	// Automated 是否由自动化流程(定时任务、CLI脚本)发起
	Automated bool

	// RequestPath 当前请求路径,仅用于日志
	RequestPath string
}

// Interactive 是否为交互式操作者发起(会把用户名拼进目录名)
func (rc RequestContext) Interactive() bool {
	return !rc.Automated && rc.Actor != ""
}

// ArchiveSession 一次导出运行的工作目录
type ArchiveSession struct {
	Dir       string    `json:"dir"`        // 会话目录绝对路径
	CreatedAt time.Time `json:"created_at"` // 创建时间
	User      string    `json:"user"`       // 发起用户(可为空)
}

// SessionManifest 会话清单
// 写入会话目录,供后续请求和外部报告读取
type SessionManifest struct {
	// 会话信息
	SessionID string `json:"session_id"` // 会话唯一ID (UUID)
	ToolName  string `json:"tool_name"`  // 工具名(目录名前缀)
	Dir       string `json:"dir"`        // 会话目录
	User      string `json:"user,omitempty"`

	// 请求信息
	Automated   bool   `json:"automated"`
	RequestPath string `json:"request_path,omitempty"`

	// 时间戳
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionManifest 创建会话清单
func NewSessionManifest(toolName string, sess *ArchiveSession, rc RequestContext) *SessionManifest {
	return &SessionManifest{
		SessionID:   generateID(),
		ToolName:    toolName,
		Dir:         sess.Dir,
		User:        sess.User,
		Automated:   rc.Automated,
		RequestPath: rc.RequestPath,
		CreatedAt:   sess.CreatedAt,
	}
}

// ToJSON 序列化为JSON
func (m *SessionManifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// SaveToFile 保存到文件
func (m *SessionManifest) SaveToFile(filepath string) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

// LoadManifestFromFile 从文件加载会话清单
func LoadManifestFromFile(filepath string) (*SessionManifest, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	var m SessionManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SessionStatus 会话进度
type SessionStatus struct {
	Dir          string `json:"dir"`
	ListedURLs   int    `json:"listed_urls"`  // 爬取列表中的URL数
	CrawledURLs  int    `json:"crawled_urls"` // 进度日志中的URL数
	HasCrawlList bool   `json:"has_crawl_list"`
}
