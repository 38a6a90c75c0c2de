package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/scanner"
	"github.com/RecoveryAshes/StaticExport/internal/utils"
)

// SessionManager 归档会话管理器
// 职责: 创建/定位/关闭会话目录,维护会话指针
type SessionManager struct {
	store       *ListStore
	workingRoot string
	toolName    string
	disk        *DiskMonitor

	// now 可替换的时钟
	now func() time.Time
}

// NewSessionManager 创建会话管理器
func NewSessionManager(store *ListStore, workingRoot, toolName string, disk *DiskMonitor) *SessionManager {
	return &SessionManager{
		store:       store,
		workingRoot: absPath(workingRoot),
		toolName:    toolName,
		disk:        disk,
		now:         time.Now,
	}
}

// Open 打开导出会话
// 指针可读且目录存在时直接返回当前会话,否则新建会话目录并更新指针
func (m *SessionManager) Open(rc models.RequestContext) (*models.ArchiveSession, error) {
	if dir, err := m.store.ReadPointer(); err == nil {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			utils.Debugf("复用现有会话: %s", dir)
			return m.loadSession(dir), nil
		}
	} else if !errors.Is(err, models.ErrNoActiveSession) {
		return nil, err
	}

	if err := os.MkdirAll(m.workingRoot, 0755); err != nil {
		return nil, &models.FilesystemError{Op: "mkdir", Path: m.workingRoot, Cause: err}
	}
	if err := m.disk.Check(m.workingRoot); err != nil {
		return nil, err
	}

	created := m.now()
	sess := &models.ArchiveSession{
		Dir:       filepath.Join(m.workingRoot, m.sessionDirName(created, rc)),
		CreatedAt: created,
	}
	if rc.Interactive() {
		sess.User = rc.Actor
	}

	if err := os.MkdirAll(sess.Dir, 0755); err != nil {
		return nil, &models.FilesystemError{Op: "mkdir", Path: sess.Dir, Cause: err}
	}

	manifest := models.NewSessionManifest(m.toolName, sess, rc)
	manifestPath := filepath.Join(sess.Dir, models.ManifestFilename)
	if err := manifest.SaveToFile(manifestPath); err != nil {
		return nil, &models.FilesystemError{Op: "write_manifest", Path: manifestPath, Cause: err}
	}

	if err := m.store.WritePointer(sess.Dir); err != nil {
		return nil, err
	}

	utils.Logger.Info().
		Str("dir", sess.Dir).
		Str("session_id", manifest.SessionID).
		Bool("automated", rc.Automated).
		Msg("创建导出会话")
	return sess, nil
}

// Current 返回指针指向的会话
// 目录被外部删除时立即重建,没有指针时返回 ErrNoActiveSession
func (m *SessionManager) Current() (*models.ArchiveSession, error) {
	dir, err := m.store.ReadPointer()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		utils.Warnf("会话目录不存在,重新创建: %s", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &models.FilesystemError{Op: "mkdir", Path: dir, Cause: err}
		}
	} else if err != nil {
		return nil, &models.FilesystemError{Op: "stat", Path: dir, Cause: err}
	}

	return m.loadSession(dir), nil
}

// Close 删除会话目录,指针仍指向该目录时一并删除
// 返回目录是否被删除
func (m *SessionManager) Close(sess *models.ArchiveSession) (bool, error) {
	removed, err := scanner.DeleteTree(sess.Dir)
	if err != nil {
		return false, err
	}

	dir, err := m.store.ReadPointer()
	switch {
	case err == nil && filepath.Clean(dir) == filepath.Clean(sess.Dir):
		if err := m.store.RemovePointer(); err != nil {
			return removed, err
		}
	case err != nil && !errors.Is(err, models.ErrNoActiveSession):
		return removed, err
	}

	if removed {
		utils.Infof("已删除会话目录: %s", sess.Dir)
	}
	return removed, nil
}

// Status 会话进度: 列表长度和已爬取数量
func (m *SessionManager) Status(sess *models.ArchiveSession) (*models.SessionStatus, error) {
	listPath := m.store.ListPath(sess)

	listed, err := utils.CountLines(listPath)
	if err != nil {
		return nil, &models.FilesystemError{Op: "count", Path: listPath, Cause: err}
	}

	progressPath := m.store.ProgressPath(sess)
	crawled, err := utils.CountLines(progressPath)
	if err != nil {
		return nil, &models.FilesystemError{Op: "count", Path: progressPath, Cause: err}
	}

	_, statErr := os.Stat(listPath)
	return &models.SessionStatus{
		Dir:          sess.Dir,
		ListedURLs:   listed,
		CrawledURLs:  crawled,
		HasCrawlList: statErr == nil,
	}, nil
}

// sessionDirName 会话目录名: <工具名>-<unix时间戳>[-<用户>]
func (m *SessionManager) sessionDirName(created time.Time, rc models.RequestContext) string {
	name := fmt.Sprintf("%s-%d", m.toolName, created.Unix())
	if rc.Interactive() {
		if user := sanitizeUser(rc.Actor); user != "" {
			name += "-" + user
		}
	}
	return name
}

// loadSession 从清单恢复会话信息,清单缺失或损坏时只填目录
func (m *SessionManager) loadSession(dir string) *models.ArchiveSession {
	sess := &models.ArchiveSession{Dir: dir}

	manifest, err := models.LoadManifestFromFile(filepath.Join(dir, models.ManifestFilename))
	if err != nil {
		utils.Debugf("读取会话清单失败 [%s]: %v", dir, err)
		return sess
	}
	sess.CreatedAt = manifest.CreatedAt
	sess.User = manifest.User
	return sess
}

// sanitizeUser 用户名只保留字母数字和 . _ -,其它字符替换为 -
func sanitizeUser(actor string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(actor)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
