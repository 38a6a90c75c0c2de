package core

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/utils"
)

// 持久化记录文件名,外部爬取器按这些名字读写
const (
	PointerFilename = "STATIC-EXPORT-CURRENT-ARCHIVE"
	CrawlListFile   = "STATIC-EXPORT-CRAWL-LIST"
	ProgressFile    = "STATIC-EXPORT-CRAWLED-LINKS"
	BuildReportFile = "build_report.json"
)

// ListStore 会话指针、爬取列表和进度日志的存取
type ListStore struct {
	workingRoot string
}

// NewListStore 创建存储,workingRoot为指针文件所在目录
func NewListStore(workingRoot string) *ListStore {
	return &ListStore{workingRoot: absPath(workingRoot)}
}

// absPath 转为绝对路径,失败时退回Clean
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// PointerPath 指针文件路径
func (s *ListStore) PointerPath() string {
	return filepath.Join(s.workingRoot, PointerFilename)
}

// ListPath 会话的爬取列表路径
func (s *ListStore) ListPath(sess *models.ArchiveSession) string {
	return filepath.Join(sess.Dir, CrawlListFile)
}

// ProgressPath 会话的进度日志路径
func (s *ListStore) ProgressPath(sess *models.ArchiveSession) string {
	return filepath.Join(sess.Dir, ProgressFile)
}

// ReadPointer 读取当前会话目录,没有指针时返回 ErrNoActiveSession
func (s *ListStore) ReadPointer() (string, error) {
	data, err := os.ReadFile(s.PointerPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", models.ErrNoActiveSession
		}
		return "", &models.FilesystemError{Op: "read_pointer", Path: s.PointerPath(), Cause: err}
	}

	dir := strings.TrimSpace(string(data))
	if dir == "" {
		return "", models.ErrNoActiveSession
	}
	return dir, nil
}

// WritePointer 原子写入当前会话目录(绝对路径)
func (s *ListStore) WritePointer(dir string) error {
	dir = absPath(dir)
	if err := os.MkdirAll(s.workingRoot, 0755); err != nil {
		return &models.FilesystemError{Op: "mkdir", Path: s.workingRoot, Cause: err}
	}
	if err := utils.WriteFileAtomic(s.PointerPath(), []byte(dir), 0644); err != nil {
		return &models.FilesystemError{Op: "write_pointer", Path: s.PointerPath(), Cause: err}
	}
	return nil
}

// RemovePointer 删除指针文件,不存在时不报错
func (s *ListStore) RemovePointer() error {
	if err := os.Remove(s.PointerPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &models.FilesystemError{Op: "remove_pointer", Path: s.PointerPath(), Cause: err}
	}
	return nil
}

// WriteCrawlList 原子替换爬取列表,换行分隔,末尾无换行
func (s *ListStore) WriteCrawlList(sess *models.ArchiveSession, urls []string) error {
	path := s.ListPath(sess)
	if err := utils.WriteFileAtomic(path, []byte(strings.Join(urls, "\n")), 0644); err != nil {
		return &models.FilesystemError{Op: "write_crawl_list", Path: path, Cause: err}
	}
	return nil
}

// ReadCrawlList 读取爬取列表,文件不存在时返回空列表
func (s *ListStore) ReadCrawlList(sess *models.ArchiveSession) ([]string, error) {
	data, err := os.ReadFile(s.ListPath(sess))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, &models.FilesystemError{Op: "read_crawl_list", Path: s.ListPath(sess), Cause: err}
	}

	urls := make([]string, 0)
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	return urls, nil
}

// ResetProgress 在排他锁下清空进度日志(不存在则创建)
func (s *ListStore) ResetProgress(sess *models.ArchiveSession) error {
	path := s.ProgressPath(sess)
	return withLockedFile(path, os.O_CREATE|os.O_WRONLY, "reset_progress", func(f *os.File) error {
		return f.Truncate(0)
	})
}

// AppendCrawled 在排他锁下追加已爬取的URL,每行一个
func (s *ListStore) AppendCrawled(sess *models.ArchiveSession, urls ...string) error {
	if len(urls) == 0 {
		return nil
	}
	path := s.ProgressPath(sess)
	return withLockedFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, "append_crawled", func(f *os.File) error {
		w := bufio.NewWriter(f)
		for _, u := range urls {
			if _, err := fmt.Fprintln(w, u); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}

// withLockedFile 打开文件并持有排他锁执行fn
func withLockedFile(path string, flag int, op string, fn func(f *os.File) error) error {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return &models.FilesystemError{Op: op, Path: path, Cause: err}
	}
	defer f.Close()

	if err := utils.LockFile(f); err != nil {
		return &models.FilesystemError{Op: op + "_lock", Path: path, Cause: err}
	}
	defer func() { _ = utils.UnlockFile(f) }()

	if err := fn(f); err != nil {
		return &models.FilesystemError{Op: op, Path: path, Cause: err}
	}
	return nil
}
