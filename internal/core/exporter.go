package core

import (
	"context"
	"strings"

	"github.com/RecoveryAshes/StaticExport/internal/config"
	"github.com/RecoveryAshes/StaticExport/internal/content"
	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/scanner"
	"github.com/RecoveryAshes/StaticExport/internal/utils"
)

// Exporter 导出协调器
// 职责: 按配置组装存储、会话管理器、扫描器和内容仓库
type Exporter struct {
	cfg      *config.Config
	store    *ListStore
	sessions *SessionManager
}

// NewExporter 创建导出协调器,只需要工作目录即可管理会话
func NewExporter(cfg *config.Config) (*Exporter, error) {
	if cfg.Export.WorkingDir == "" {
		return nil, &models.ConfigurationError{Field: "export.working_dir", Reason: "工作目录不能为空"}
	}

	store := NewListStore(cfg.Export.WorkingDir)
	disk := NewDiskMonitor(cfg.Export.MinFreeDiskMB)

	return &Exporter{
		cfg:      cfg,
		store:    store,
		sessions: NewSessionManager(store, cfg.Export.WorkingDir, cfg.Export.ToolName, disk),
	}, nil
}

// Store 持久化记录存取
func (e *Exporter) Store() *ListStore {
	return e.store
}

// Sessions 会话管理器
func (e *Exporter) Sessions() *SessionManager {
	return e.sessions
}

// Build 打开(或复用)会话并构建爬取列表
// final为true时并入配置的额外URL和extraURLs
func (e *Exporter) Build(ctx context.Context, rc models.RequestContext, final bool, extraURLs string) (*models.BuildReport, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	sess, err := e.sessions.Open(rc)
	if err != nil {
		return nil, err
	}

	repo, err := content.OpenSQLite(e.cfg.Content.Database, e.cfg.Site.BaseURL, e.cfg.Content.PermalinkStructure)
	if err != nil {
		return nil, &models.RepositoryError{Op: "open", Cause: err}
	}
	defer repo.Close()

	builder, err := e.newBuilder(repo)
	if err != nil {
		return nil, err
	}

	if !final {
		return builder.BuildInitial(ctx, sess)
	}
	return builder.BuildFinal(ctx, sess, joinURLLists(e.cfg.Export.AdditionalURLs, extraURLs))
}

// Prune 关闭当前会话
func (e *Exporter) Prune() (bool, error) {
	sess, err := e.sessions.Current()
	if err != nil {
		return false, err
	}
	return e.sessions.Close(sess)
}

// newBuilder 按配置创建列表组装器
func (e *Exporter) newBuilder(repo models.ContentRepository) (*ListBuilder, error) {
	site := e.cfg.Site

	uploads, err := scanner.NewRootMapping(site.UploadsDir, site.UploadsURL)
	if err != nil {
		return nil, &models.ConfigurationError{Field: "site.uploads_url", Reason: err.Error()}
	}

	bc := BuilderConfig{SeedURL: site.BaseURL, Uploads: &uploads}
	if site.ThemeDir != "" {
		theme, err := scanner.NewRootMapping(site.ThemeDir, site.ThemeURL)
		if err != nil {
			return nil, &models.ConfigurationError{Field: "site.theme_url", Reason: err.Error()}
		}
		bc.Theme = &theme
	}

	// 指针文件位于工作目录根,工作目录默认就是上传目录
	markers := append(e.cfg.ScanMarkers(), PointerFilename)
	filter := scanner.NewFilter(markers, e.cfg.Export.ExcludedExtensions)
	sc := scanner.NewScanner(filter, e.cfg.Export.MaxScanDepth)
	expander := content.NewExpander(repo, e.cfg.Export.ShowProgress)

	utils.Debugf("扫描排除标记: %v", markers)
	return NewListBuilder(e.store, sc, expander, bc), nil
}

// joinURLLists 合并多个换行分隔的URL列表
func joinURLLists(lists ...string) string {
	parts := make([]string, 0, len(lists))
	for _, l := range lists {
		if strings.TrimSpace(l) != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, "\n")
}
