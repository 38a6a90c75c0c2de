package models

import (
	"encoding/json"
	"time"
)

// BuildKind 列表构建类型
type BuildKind string

const (
	BuildInitial BuildKind = "initial" // 种子 + 主题 + 内容 + 上传
	BuildFinal   BuildKind = "final"   // 另外并入额外URL
)

// SourceCounts 各来源贡献的URL数(去重前)
type SourceCounts struct {
	Seed    int `json:"seed"`
	Theme   int `json:"theme"`
	Content int `json:"content"`
	Extra   int `json:"extra"`
	Uploads int `json:"uploads"`
}

// Sum 去重前总数
func (c SourceCounts) Sum() int {
	return c.Seed + c.Theme + c.Content + c.Extra + c.Uploads
}

// BuildReport 爬取列表构建报告
type BuildReport struct {
	Kind       BuildKind    `json:"kind"`
	SessionDir string       `json:"session_dir"`
	SeedURL    string       `json:"seed_url"`
	Sources    SourceCounts `json:"sources"`
	Total      int          `json:"total"`      // 去重后的列表长度
	Duplicates int          `json:"duplicates"` // 合并时去掉的重复项

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	ListPath     string `json:"list_path"`
	ProgressPath string `json:"progress_path"`
}

// ToJSON 序列化为JSON
func (r *BuildReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
