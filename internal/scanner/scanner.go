package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/RecoveryAshes/StaticExport/internal/utils"
)

// DefaultMaxDepth 默认最大扫描深度
const DefaultMaxDepth = 64

// skippedDirs 版本控制元数据目录
var skippedDirs = map[string]bool{
	".git": true,
	".svn": true,
	".hg":  true,
}

// Scanner 本地文件树扫描器
// 职责: 显式栈遍历目录,按过滤器挑出可爬取文件并转换为公开URL
type Scanner struct {
	filter   *Filter
	maxDepth int
}

// dirItem 待遍历的目录
type dirItem struct {
	path  string
	depth int
}

// NewScanner 创建扫描器
func NewScanner(filter *Filter, maxDepth int) *Scanner {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Scanner{filter: filter, maxDepth: maxDepth}
}

// Scan 扫描mapping.Dir下的所有可爬取文件
// 根目录不存在或不是目录时返回空结果,不是错误。只有context取消会返回错误。
func (s *Scanner) Scan(ctx context.Context, mapping RootMapping) ([]string, error) {
	urls := make([]string, 0)

	info, err := os.Stat(mapping.Dir)
	if err != nil || !info.IsDir() {
		utils.Debugf("扫描目录不存在,跳过: %s", mapping.Dir)
		return urls, nil
	}

	// 已访问的真实路径,防止符号链接成环
	visited := make(map[string]bool)
	seen := make(map[string]bool)

	stack := []dirItem{{path: mapping.Dir, depth: 0}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		real, err := filepath.EvalSymlinks(item.path)
		if err != nil {
			utils.Warnf("解析目录真实路径失败 [%s]: %v", item.path, err)
			continue
		}
		if visited[real] {
			utils.Debugf("目录已访问,跳过(可能是符号链接环): %s", item.path)
			continue
		}
		visited[real] = true

		entries, err := os.ReadDir(item.path)
		if err != nil {
			utils.Warnf("读取目录失败 [%s]: %v", item.path, err)
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if skippedDirs[name] {
				continue
			}
			path := filepath.Join(item.path, name)

			// Stat跟随符号链接,链接到目录的也按目录处理
			target, err := os.Stat(path)
			if err != nil {
				continue
			}

			if target.IsDir() {
				if item.depth+1 > s.maxDepth {
					utils.Warnf("超过最大扫描深度 %d,跳过: %s", s.maxDepth, path)
					continue
				}
				stack = append(stack, dirItem{path: path, depth: item.depth + 1})
				continue
			}

			if !s.filter.IsCrawlableUnder(mapping.Dir, path) {
				continue
			}

			u, ok := mapping.URLFor(path)
			if !ok || seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}

	sort.Strings(urls)
	utils.Debugf("扫描完成: %s -> %d 个URL", mapping.Dir, len(urls))
	return urls, nil
}
