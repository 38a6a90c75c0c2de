package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/RecoveryAshes/StaticExport/internal/utils"
	"gopkg.in/yaml.v3"
)

// Fixture YAML内容导入文件的结构
type Fixture struct {
	Posts      []FixturePost     `yaml:"posts"`
	Taxonomies []FixtureTaxonomy `yaml:"taxonomies"`
	Terms      []FixtureTerm     `yaml:"terms"`
}

// FixturePost 一条内容记录
type FixturePost struct {
	ID     int64     `yaml:"id"`
	Type   string    `yaml:"type"`
	Status string    `yaml:"status"`
	Slug   string    `yaml:"slug"`
	Parent int64     `yaml:"parent"`
	Date   time.Time `yaml:"date"`
}

// FixtureTaxonomy 一个分类法
type FixtureTaxonomy struct {
	Name    string `yaml:"name"`
	Public  *bool  `yaml:"public"` // 缺省为公开
	Rewrite string `yaml:"rewrite"`
}

// FixtureTerm 一个词条
type FixtureTerm struct {
	ID       int64  `yaml:"id"`
	Taxonomy string `yaml:"taxonomy"`
	Slug     string `yaml:"slug"`
	Count    int    `yaml:"count"`
}

// ImportSummary 导入结果统计
type ImportSummary struct {
	Posts      int
	Taxonomies int
	Terms      int
}

// ImportFixtureFile 从YAML文件导入内容
func (r *SQLiteRepository) ImportFixtureFile(ctx context.Context, path string) (*ImportSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开导入文件失败: %w", err)
	}
	defer file.Close()

	return r.ImportFixture(ctx, file)
}

// ImportFixture 从YAML导入内容,已存在的同ID记录被覆盖
// 整个导入在一个事务中完成
func (r *SQLiteRepository) ImportFixture(ctx context.Context, reader io.Reader) (*ImportSummary, error) {
	var fixture Fixture
	if err := yaml.NewDecoder(reader).Decode(&fixture); err != nil && err != io.EOF {
		return nil, fmt.Errorf("解析YAML失败: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("开启事务失败: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	summary := &ImportSummary{}

	for _, tax := range fixture.Taxonomies {
		if tax.Name == "" {
			return nil, fmt.Errorf("分类法名称不能为空")
		}
		public := tax.Public == nil || *tax.Public
		// REPLACE会先删除旧行并级联删除词条,这里用upsert原地更新
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO taxonomies (name, public, rewrite_slug) VALUES (?, ?, ?)
			 ON CONFLICT (name) DO UPDATE SET public = excluded.public, rewrite_slug = excluded.rewrite_slug`,
			tax.Name, public, tax.Rewrite,
		); err != nil {
			return nil, fmt.Errorf("写入分类法失败 [%s]: %w", tax.Name, err)
		}
		summary.Taxonomies++
	}

	for _, post := range fixture.Posts {
		if post.Slug == "" {
			return nil, fmt.Errorf("内容 #%d 缺少slug", post.ID)
		}
		postType, status := post.Type, post.Status
		if postType == "" {
			postType = "post"
		}
		if status == "" {
			status = "publish"
		}
		published := ""
		if !post.Date.IsZero() {
			published = post.Date.UTC().Format(time.RFC3339)
		}

		var id interface{}
		if post.ID > 0 {
			id = post.ID
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO posts (id, post_type, post_status, slug, parent_id, published_at) VALUES (?, ?, ?, ?, ?, ?)",
			id, postType, status, post.Slug, post.Parent, published,
		); err != nil {
			return nil, fmt.Errorf("写入内容失败 [%s]: %w", post.Slug, err)
		}
		summary.Posts++
	}

	for _, term := range fixture.Terms {
		var id interface{}
		if term.ID > 0 {
			id = term.ID
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO terms (id, taxonomy, slug, post_count) VALUES (?, ?, ?, ?)",
			id, term.Taxonomy, term.Slug, term.Count,
		); err != nil {
			return nil, fmt.Errorf("写入词条失败 [%s/%s]: %w", term.Taxonomy, term.Slug, err)
		}
		summary.Terms++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("提交事务失败: %w", err)
	}

	utils.Infof("内容导入完成: %d 条内容, %d 个分类法, %d 个词条", summary.Posts, summary.Taxonomies, summary.Terms)
	return summary, nil
}
