package content

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/utils"
)

// Expander 内容URL展开器
// 职责: 查询已发布内容,按类型解析永久链接,展开层级前缀URL,并追加分类词条URL
type Expander struct {
	repo         models.ContentRepository
	showProgress bool
}

// NewExpander 创建内容URL展开器
func NewExpander(repo models.ContentRepository, showProgress bool) *Expander {
	return &Expander{repo: repo, showProgress: showProgress}
}

// Expand 返回所有内容派生的URL(去重,保持发现顺序)
// 仓库任何一步失败都返回 RepositoryError,不返回部分结果
func (e *Expander) Expand(ctx context.Context, siteBaseURL string) ([]string, error) {
	base, err := url.Parse(strings.TrimSpace(siteBaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &models.ConfigurationError{Field: "site.base_url", Reason: fmt.Sprintf("无效的站点地址: %q", siteBaseURL)}
	}
	host := strings.TrimRight(base.String(), "/")
	basePath := strings.TrimRight(base.Path, "/")

	records, err := e.repo.QueryPublished(ctx)
	if err != nil {
		return nil, &models.RepositoryError{Op: "query_published", Cause: err}
	}

	urls := models.NewURLSet()

	bar := utils.NewProgressBar(len(records), "解析内容链接", e.showProgress)
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_ = bar.Add(1)

		if !record.Eligible() {
			continue
		}

		permalink, err := e.permalink(ctx, record)
		if err != nil {
			return nil, &models.RepositoryError{Op: fmt.Sprintf("permalink %s#%d", record.Type, record.ID), Cause: err}
		}
		permalink = strings.TrimSpace(permalink)

		parsed, err := url.Parse(permalink)
		if err != nil || permalink == "" {
			utils.Warnf("跳过无法解析的永久链接 [%s#%d]: %q", record.Type, record.ID, permalink)
			continue
		}

		for _, prefix := range PathPrefixes(host, stripPathPrefix(parsed.Path, basePath)) {
			urls.Add(prefix)
		}
		urls.Add(permalink)
	}
	_ = bar.Finish()

	termURLs, err := e.termURLs(ctx)
	if err != nil {
		return nil, err
	}
	urls.AddAll(termURLs)

	utils.Infof("内容展开完成: %d 条记录 -> %d 个URL", len(records), urls.Len())
	return urls.List(), nil
}

// permalink 按类型标签分派到仓库的永久链接规则
func (e *Expander) permalink(ctx context.Context, record models.ContentRecord) (string, error) {
	switch record.Type {
	case models.ContentTypePage:
		return e.repo.PageLink(ctx, record.ID)
	case models.ContentTypePost:
		return e.repo.PostLink(ctx, record.ID)
	case models.ContentTypeAttachment:
		return e.repo.AttachmentLink(ctx, record.ID)
	default:
		return e.repo.PostTypeLink(ctx, record.ID)
	}
}

// termURLs 所有公开分类法下非空词条的URL
func (e *Expander) termURLs(ctx context.Context) ([]string, error) {
	taxonomies, err := e.repo.ListTaxonomies(ctx, true)
	if err != nil {
		return nil, &models.RepositoryError{Op: "list_taxonomies", Cause: err}
	}

	urls := make([]string, 0)
	for _, taxonomy := range taxonomies {
		terms, err := e.repo.ListTerms(ctx, taxonomy.Name, true)
		if err != nil {
			return nil, &models.RepositoryError{Op: "list_terms " + taxonomy.Name, Cause: err}
		}
		for _, term := range terms {
			link, err := e.repo.TermLink(ctx, term)
			if err != nil {
				return nil, &models.RepositoryError{Op: "term_link " + term.Slug, Cause: err}
			}
			if link = strings.TrimSpace(link); link != "" {
				urls = append(urls, link)
			}
		}
	}
	return urls, nil
}

// PathPrefixes 返回路径的中间层级URL
// /2018/01/01/my-post/ -> host/2018/, host/2018/01/, host/2018/01/01/
// 完整路径本身不在结果中;单段路径没有中间层级
func PathPrefixes(host, path string) []string {
	segments := make([]string, 0)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	prefixes := make([]string, 0, len(segments))
	current := strings.TrimRight(host, "/") + "/"
	for i := 0; i < len(segments)-1; i++ {
		current += segments[i] + "/"
		prefixes = append(prefixes, current)
	}
	return prefixes
}

// stripPathPrefix 去掉站点子目录前缀,前缀不存在时原样返回
func stripPathPrefix(path, prefix string) string {
	if prefix == "" {
		return path
	}
	if path == prefix {
		return "/"
	}
	if strings.HasPrefix(path, prefix+"/") {
		return strings.TrimPrefix(path, prefix)
	}
	return path
}
