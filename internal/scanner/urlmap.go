package scanner

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// RootMapping 本地目录与其公开URL前缀的对应关系
type RootMapping struct {
	Dir     string   // 本地根目录
	BaseURL *url.URL // 映射到Dir的公开URL
}

// NewRootMapping 创建目录映射
func NewRootMapping(dir, baseURL string) (RootMapping, error) {
	if dir == "" {
		return RootMapping{}, fmt.Errorf("目录不能为空")
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return RootMapping{}, fmt.Errorf("无效的URL前缀 [%s]: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return RootMapping{}, fmt.Errorf("URL前缀必须是绝对地址: %s", baseURL)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return RootMapping{}, fmt.Errorf("解析目录失败 [%s]: %w", dir, err)
	}
	return RootMapping{Dir: abs, BaseURL: u}, nil
}

// URLFor 把Dir下的路径映射为URL
// 路径不在Dir下时返回false,不做任何猜测性替换
func (m RootMapping) URLFor(path string) (string, bool) {
	rel, err := filepath.Rel(m.Dir, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	if rel == "." {
		return m.BaseURL.String(), true
	}
	return m.BaseURL.JoinPath(strings.Split(rel, "/")...).String(), true
}
