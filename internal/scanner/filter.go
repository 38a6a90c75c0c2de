package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

// PreviousExportMarker 旧导出产物的标记,永远不能被再次导出
const PreviousExportMarker = "previous-export"

// DefaultDeniedExtensions 服务端执行或模板文件的扩展名
var DefaultDeniedExtensions = []string{"php", "phtml", "tpl"}

// Filter 可爬取性过滤器
// 纯谓词,除存在性检查外没有任何I/O
type Filter struct {
	markers []string
	denied  map[string]bool
}

// NewFilter 创建过滤器
// markers: 路径片段中出现即排除(工具工作目录名、旧导出标记)
// deniedExtensions: 不带点的扩展名,大小写不敏感
func NewFilter(markers []string, deniedExtensions []string) *Filter {
	f := &Filter{denied: make(map[string]bool)}
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			f.markers = append(f.markers, m)
		}
	}
	for _, ext := range deniedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			f.denied[ext] = true
		}
	}
	return f
}

// IsCrawlable 判断文件是否应当进入爬取列表
func (f *Filter) IsCrawlable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return f.allowedPath(path)
}

// IsCrawlableUnder 同 IsCrawlable,但标记只在root之下的相对路径中匹配
// root以上的目录名(如站点本身放在 previous-exports-backup 下)不影响结果
func (f *Filter) IsCrawlableUnder(root, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(filepath.ToSlash(rel), "../") {
		return f.allowedPath(path)
	}
	return f.allowedPath(rel)
}

// allowedPath 不做文件系统访问的那部分判断
func (f *Filter) allowedPath(path string) bool {
	if f.hasMarker(path) {
		return false
	}

	// 没有扩展名的文件视为可爬取
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return true
	}
	return !f.denied[ext]
}

// hasMarker 任意路径片段包含标记即命中
func (f *Filter) hasMarker(path string) bool {
	if len(f.markers) == 0 {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == "" {
			continue
		}
		for _, marker := range f.markers {
			if strings.Contains(segment, marker) {
				return true
			}
		}
	}
	return false
}
