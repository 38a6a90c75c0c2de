package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	_ "modernc.org/sqlite"
)

// DefaultPermalinkStructure 默认文章永久链接结构
const DefaultPermalinkStructure = "/%year%/%monthnum%/%day%/%postname%/"

// maxPageDepth 页面父级链的最大长度,防止数据中的环
const maxPageDepth = 32

// SQLiteRepository 基于SQLite的内容仓库
type SQLiteRepository struct {
	db        *sql.DB
	path      string
	siteURL   string // 不带末尾斜杠
	structure string
}

// postRow posts表中的一行
type postRow struct {
	id          int64
	postType    string
	slug        string
	parentID    int64
	publishedAt time.Time
}

// openDB 打开SQLite数据库
// 外键开关写在DSN里,连接池中的每个连接建立时都会执行
func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	return sqlDB, nil
}

// dsn 数据库路径加上连接参数
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)"
}

// OpenSQLite 打开或创建内容数据库
// siteURL: 站点地址,永久链接都基于它生成
// structure: 文章永久链接结构,为空时使用 ?p=ID 形式
func OpenSQLite(dbPath, siteURL, structure string) (*SQLiteRepository, error) {
	sqlDB, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}

	return &SQLiteRepository{
		db:        sqlDB,
		path:      dbPath,
		siteURL:   strings.TrimRight(strings.TrimSpace(siteURL), "/"),
		structure: strings.TrimSpace(structure),
	}, nil
}

// Path 数据库文件路径
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Close 关闭数据库
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// QueryPublished 实现 models.ContentRepository
func (r *SQLiteRepository) QueryPublished(ctx context.Context) ([]models.ContentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, post_type, post_status
		FROM posts
		WHERE post_status = ? AND post_type NOT IN (?, ?)
		ORDER BY id`,
		models.StatusPublished, string(models.ContentTypeRevision), string(models.ContentTypeMenuItem))
	if err != nil {
		return nil, fmt.Errorf("查询已发布内容失败: %w", err)
	}
	defer rows.Close()

	records := make([]models.ContentRecord, 0)
	for rows.Next() {
		var rec models.ContentRecord
		var postType string
		if err := rows.Scan(&rec.ID, &postType, &rec.Status); err != nil {
			return nil, fmt.Errorf("读取内容记录失败: %w", err)
		}
		rec.Type = models.ContentType(postType)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// getPost 按ID读取一行
func (r *SQLiteRepository) getPost(ctx context.Context, id int64) (*postRow, error) {
	var row postRow
	var published string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, post_type, slug, parent_id, published_at FROM posts WHERE id = ?", id,
	).Scan(&row.id, &row.postType, &row.slug, &row.parentID, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("内容不存在: #%d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("读取内容 #%d 失败: %w", id, err)
	}
	if published != "" {
		t, err := time.Parse(time.RFC3339, published)
		if err != nil {
			return nil, fmt.Errorf("内容 #%d 发布时间格式错误: %w", id, err)
		}
		row.publishedAt = t
	}
	return &row, nil
}

// PostLink 按永久链接结构生成文章地址
func (r *SQLiteRepository) PostLink(ctx context.Context, id int64) (string, error) {
	post, err := r.getPost(ctx, id)
	if err != nil {
		return "", err
	}
	// 没有发布时间时日期占位符无从替换,退回 ?p=ID 形式
	if r.structure == "" || (post.publishedAt.IsZero() && hasDateToken(r.structure)) {
		return r.siteURL + "/?p=" + strconv.FormatInt(post.id, 10), nil
	}

	t := post.publishedAt.UTC()
	replacer := strings.NewReplacer(
		"%year%", t.Format("2006"),
		"%monthnum%", t.Format("01"),
		"%day%", t.Format("02"),
		"%hour%", t.Format("15"),
		"%minute%", t.Format("04"),
		"%second%", t.Format("05"),
		"%postname%", post.slug,
		"%post_id%", strconv.FormatInt(post.id, 10),
	)
	path := replacer.Replace(r.structure)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return r.siteURL + path, nil
}

// dateTokens 依赖发布时间的永久链接占位符
var dateTokens = []string{"%year%", "%monthnum%", "%day%", "%hour%", "%minute%", "%second%"}

// hasDateToken 结构中是否含有日期占位符
func hasDateToken(structure string) bool {
	for _, token := range dateTokens {
		if strings.Contains(structure, token) {
			return true
		}
	}
	return false
}

// PageLink 页面地址由祖先链上的slug组成
func (r *SQLiteRepository) PageLink(ctx context.Context, id int64) (string, error) {
	slugs := make([]string, 0)
	visited := make(map[int64]bool)

	current := id
	for current != 0 {
		if visited[current] || len(slugs) >= maxPageDepth {
			return "", fmt.Errorf("页面 #%d 的父级链存在环或过深", id)
		}
		visited[current] = true

		page, err := r.getPost(ctx, current)
		if err != nil {
			return "", err
		}
		slugs = append([]string{page.slug}, slugs...)
		current = page.parentID
	}
	return r.siteURL + "/" + strings.Join(slugs, "/") + "/", nil
}

// AttachmentLink 附件地址挂在父内容之下,没有父内容时直接挂在站点根
func (r *SQLiteRepository) AttachmentLink(ctx context.Context, id int64) (string, error) {
	attachment, err := r.getPost(ctx, id)
	if err != nil {
		return "", err
	}
	if attachment.parentID == 0 {
		return r.siteURL + "/" + attachment.slug + "/", nil
	}

	parent, err := r.getPost(ctx, attachment.parentID)
	if err != nil {
		return "", err
	}

	var parentLink string
	switch models.ContentType(parent.postType) {
	case models.ContentTypePage:
		parentLink, err = r.PageLink(ctx, parent.id)
	case models.ContentTypePost:
		parentLink, err = r.PostLink(ctx, parent.id)
	default:
		parentLink, err = r.PostTypeLink(ctx, parent.id)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(parentLink, "/") + "/" + attachment.slug + "/", nil
}

// PostTypeLink 自定义类型的通用地址 /<type>/<slug>/
func (r *SQLiteRepository) PostTypeLink(ctx context.Context, id int64) (string, error) {
	post, err := r.getPost(ctx, id)
	if err != nil {
		return "", err
	}
	return r.siteURL + "/" + post.postType + "/" + post.slug + "/", nil
}

// ListTaxonomies 实现 models.ContentRepository
func (r *SQLiteRepository) ListTaxonomies(ctx context.Context, publicOnly bool) ([]models.Taxonomy, error) {
	query := "SELECT name, public FROM taxonomies"
	if publicOnly {
		query += " WHERE public = 1"
	}
	query += " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询分类法失败: %w", err)
	}
	defer rows.Close()

	taxonomies := make([]models.Taxonomy, 0)
	for rows.Next() {
		var tax models.Taxonomy
		if err := rows.Scan(&tax.Name, &tax.Public); err != nil {
			return nil, fmt.Errorf("读取分类法失败: %w", err)
		}
		taxonomies = append(taxonomies, tax)
	}
	return taxonomies, rows.Err()
}

// ListTerms 实现 models.ContentRepository
func (r *SQLiteRepository) ListTerms(ctx context.Context, taxonomy string, hideEmpty bool) ([]models.Term, error) {
	query := "SELECT id, taxonomy, slug, post_count FROM terms WHERE taxonomy = ?"
	if hideEmpty {
		query += " AND post_count > 0"
	}
	query += " ORDER BY slug"

	rows, err := r.db.QueryContext(ctx, query, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("查询词条失败 [%s]: %w", taxonomy, err)
	}
	defer rows.Close()

	terms := make([]models.Term, 0)
	for rows.Next() {
		var term models.Term
		if err := rows.Scan(&term.ID, &term.Taxonomy, &term.Slug, &term.Count); err != nil {
			return nil, fmt.Errorf("读取词条失败: %w", err)
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// TermLink 词条地址 /<rewrite_slug>/<term slug>/
func (r *SQLiteRepository) TermLink(ctx context.Context, term models.Term) (string, error) {
	var rewrite string
	err := r.db.QueryRowContext(ctx,
		"SELECT rewrite_slug FROM taxonomies WHERE name = ?", term.Taxonomy,
	).Scan(&rewrite)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("分类法不存在: %s", term.Taxonomy)
	}
	if err != nil {
		return "", fmt.Errorf("读取分类法失败 [%s]: %w", term.Taxonomy, err)
	}
	if rewrite == "" {
		rewrite = term.Taxonomy
	}
	return r.siteURL + "/" + strings.Trim(rewrite, "/") + "/" + term.Slug + "/", nil
}
