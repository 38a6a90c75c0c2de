package models

import "context"

// ContentType 内容记录类型标签
type ContentType string

const (
	ContentTypePage       ContentType = "page"          // 页面
	ContentTypePost       ContentType = "post"          // 文章
	ContentTypeAttachment ContentType = "attachment"    // 附件
	ContentTypeRevision   ContentType = "revision"      // 修订版本(永不导出)
	ContentTypeMenuItem   ContentType = "nav_menu_item" // 导航菜单项(永不导出)
)

// StatusPublished 唯一可导出的内容状态
const StatusPublished = "publish"

// ContentRecord 内容仓库中的一条记录
// 只读: 由外部内容仓库持有
type ContentRecord struct {
	ID     int64       `json:"id" yaml:"id"`
	Type   ContentType `json:"type" yaml:"type"`
	Status string      `json:"status" yaml:"status"`
}

// Eligible 判断记录是否可以参与导出
func (r ContentRecord) Eligible() bool {
	if r.Status != StatusPublished {
		return false
	}
	return r.Type != ContentTypeRevision && r.Type != ContentTypeMenuItem
}

// Taxonomy 分类法(如 category, post_tag)
type Taxonomy struct {
	Name   string `json:"name" yaml:"name"`
	Public bool   `json:"public" yaml:"public"`
}

// Term 分类法下的一个词条
type Term struct {
	ID       int64  `json:"id" yaml:"id"`
	Taxonomy string `json:"taxonomy" yaml:"taxonomy"`
	Slug     string `json:"slug" yaml:"slug"`
	Count    int    `json:"count" yaml:"count"`
}

// ContentRepository 内容仓库接口
// 导出核心只查询,不拥有内容。永久链接规则由仓库实现,调用方只按类型分派。
type ContentRepository interface {
	// QueryPublished 返回所有已发布记录(不含修订版本和菜单项)
	QueryPublished(ctx context.Context) ([]ContentRecord, error)

	// PageLink 页面永久链接规则
	PageLink(ctx context.Context, id int64) (string, error)

	// PostLink 普通文章永久链接规则
	PostLink(ctx context.Context, id int64) (string, error)

	// AttachmentLink 附件永久链接规则
	AttachmentLink(ctx context.Context, id int64) (string, error)

	// PostTypeLink 其它类型的通用永久链接规则
	PostTypeLink(ctx context.Context, id int64) (string, error)

	// ListTaxonomies 列出分类法, publicOnly为true时只返回公开分类法
	ListTaxonomies(ctx context.Context, publicOnly bool) ([]Taxonomy, error)

	// ListTerms 列出分类法下的词条, hideEmpty为true时跳过没有内容的词条
	ListTerms(ctx context.Context, taxonomy string, hideEmpty bool) ([]Term, error)

	// TermLink 词条列表页的永久链接
	TermLink(ctx context.Context, term Term) (string, error)
}
