package core

import (
	"context"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/scanner"
	"github.com/RecoveryAshes/StaticExport/internal/utils"
	"golang.org/x/sync/errgroup"
)

// ContentExpander 内容URL来源
type ContentExpander interface {
	Expand(ctx context.Context, siteBaseURL string) ([]string, error)
}

// BuilderConfig 列表构建的站点映射
type BuilderConfig struct {
	SeedURL string               // 站点地址,列表第一项
	Theme   *scanner.RootMapping // 主题目录,可为空
	Uploads *scanner.RootMapping // 上传目录,必填
}

// ListBuilder 爬取列表组装器
// 职责: 并发收集各来源URL,按固定顺序去重合并,写入会话目录并重置进度日志
type ListBuilder struct {
	store    *ListStore
	scanner  *scanner.Scanner
	expander ContentExpander
	config   BuilderConfig
}

// sources 各来源收集到的URL
type sources struct {
	theme   []string
	content []string
	extra   []string
	uploads []string
}

// NewListBuilder 创建列表组装器
func NewListBuilder(store *ListStore, sc *scanner.Scanner, expander ContentExpander, config BuilderConfig) *ListBuilder {
	return &ListBuilder{
		store:    store,
		scanner:  sc,
		expander: expander,
		config:   config,
	}
}

// BuildInitial 初始构建: 种子、主题、内容、上传
func (b *ListBuilder) BuildInitial(ctx context.Context, sess *models.ArchiveSession) (*models.BuildReport, error) {
	return b.build(ctx, sess, models.BuildInitial, "")
}

// BuildFinal 最终构建: 在初始构建的基础上并入额外URL(换行分隔)
func (b *ListBuilder) BuildFinal(ctx context.Context, sess *models.ArchiveSession, extraURLs string) (*models.BuildReport, error) {
	return b.build(ctx, sess, models.BuildFinal, extraURLs)
}

// build 两种构建共用的流程
func (b *ListBuilder) build(ctx context.Context, sess *models.ArchiveSession, kind models.BuildKind, extraURLs string) (*models.BuildReport, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	report := &models.BuildReport{
		Kind:         kind,
		SessionDir:   sess.Dir,
		SeedURL:      b.config.SeedURL,
		StartTime:    time.Now(),
		ListPath:     b.store.ListPath(sess),
		ProgressPath: b.store.ProgressPath(sess),
	}

	utils.Infof("🚀 开始构建爬取列表 (%s): %s", kind, sess.Dir)

	src, err := b.gather(ctx)
	if err != nil {
		return nil, err
	}
	src.extra = utils.ParseURLList(extraURLs)

	// 合并顺序固定: 种子 -> 主题 -> 内容 -> 额外 -> 上传
	set := models.NewURLSet()
	set.Add(b.config.SeedURL)
	set.AddAll(src.theme)
	set.AddAll(src.content)
	set.AddAll(src.extra)
	set.AddAll(src.uploads)
	urls := set.List()

	report.Sources = models.SourceCounts{
		Seed:    1,
		Theme:   len(src.theme),
		Content: len(src.content),
		Extra:   len(src.extra),
		Uploads: len(src.uploads),
	}
	report.Total = len(urls)
	report.Duplicates = report.Sources.Sum() - report.Total

	if err := b.store.WriteCrawlList(sess, urls); err != nil {
		return nil, err
	}
	if err := b.store.ResetProgress(sess); err != nil {
		return nil, err
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime).Seconds()

	if err := utils.SaveJSONReport(filepath.Join(sess.Dir, BuildReportFile), report); err != nil {
		utils.Warnf("保存构建报告失败: %v", err)
	}

	utils.Logger.Info().
		Str("kind", string(kind)).
		Int("theme", report.Sources.Theme).
		Int("content", report.Sources.Content).
		Int("extra", report.Sources.Extra).
		Int("uploads", report.Sources.Uploads).
		Int("total", report.Total).
		Int("duplicates", report.Duplicates).
		Msg("✅ 爬取列表构建完成")

	return report, nil
}

// gather 并发收集主题、内容和上传三个来源
// 任一来源失败则整体失败,不写入部分列表
func (b *ListBuilder) gather(ctx context.Context) (*sources, error) {
	src := &sources{}
	g, gctx := errgroup.WithContext(ctx)

	if b.config.Theme != nil {
		theme := *b.config.Theme
		g.Go(func() error {
			urls, err := b.scanner.Scan(gctx, theme)
			src.theme = urls
			return err
		})
	}

	g.Go(func() error {
		urls, err := b.expander.Expand(gctx, b.config.SeedURL)
		src.content = urls
		return err
	})

	uploads := *b.config.Uploads
	g.Go(func() error {
		urls, err := b.scanner.Scan(gctx, uploads)
		src.uploads = urls
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return src, nil
}

// validate 检查构建所需的站点映射
func (b *ListBuilder) validate() error {
	if b.config.SeedURL == "" {
		return &models.ConfigurationError{Field: "site.base_url", Reason: "站点地址不能为空"}
	}
	if err := models.ValidateURL(b.config.SeedURL); err != nil {
		return &models.ConfigurationError{Field: "site.base_url", Reason: err.Error()}
	}
	if b.config.Uploads == nil {
		return &models.ConfigurationError{Field: "site.uploads_dir", Reason: "缺少上传目录映射"}
	}
	return nil
}
