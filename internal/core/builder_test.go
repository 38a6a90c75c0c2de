package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/scanner"
)

// fakeExpander 固定返回的内容来源
type fakeExpander struct {
	urls []string
	err  error
}

func (f *fakeExpander) Expand(ctx context.Context, siteBaseURL string) ([]string, error) {
	return f.urls, f.err
}

func writeTestFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, name := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func mustMapping(t *testing.T, dir, baseURL string) *scanner.RootMapping {
	t.Helper()
	m, err := scanner.NewRootMapping(dir, baseURL)
	if err != nil {
		t.Fatalf("NewRootMapping() error = %v", err)
	}
	return &m
}

type builderFixture struct {
	builder *ListBuilder
	store   *ListStore
	sess    *models.ArchiveSession
}

func newBuilderFixture(t *testing.T, expander ContentExpander) *builderFixture {
	t.Helper()

	base := t.TempDir()
	themeDir := filepath.Join(base, "theme")
	uploadsDir := filepath.Join(base, "uploads")
	writeTestFiles(t, themeDir, "style.css", "functions.php")
	writeTestFiles(t, uploadsDir, "logo.png", "readme.php")

	store := NewListStore(uploadsDir)
	sess := &models.ArchiveSession{Dir: filepath.Join(uploadsDir, "static-html-output-1700000000")}
	if err := os.MkdirAll(sess.Dir, 0755); err != nil {
		t.Fatal(err)
	}

	filter := scanner.NewFilter([]string{"static-html-output", scanner.PreviousExportMarker}, scanner.DefaultDeniedExtensions)
	b := NewListBuilder(store, scanner.NewScanner(filter, 0), expander, BuilderConfig{
		SeedURL: "http://example.com/",
		Theme:   mustMapping(t, themeDir, "http://example.com/wp-content/themes/t"),
		Uploads: mustMapping(t, uploadsDir, "http://example.com/wp-content/uploads"),
	})
	return &builderFixture{builder: b, store: store, sess: sess}
}

func TestBuildInitialOrder(t *testing.T) {
	f := newBuilderFixture(t, &fakeExpander{urls: []string{
		"http://example.com/2020/",
		"http://example.com/2020/05/01/hello/",
		"http://example.com/",
	}})

	report, err := f.builder.BuildInitial(context.Background(), f.sess)
	if err != nil {
		t.Fatalf("BuildInitial() error = %v", err)
	}

	want := []string{
		"http://example.com/",
		"http://example.com/wp-content/themes/t/style.css",
		"http://example.com/2020/",
		"http://example.com/2020/05/01/hello/",
		"http://example.com/wp-content/uploads/logo.png",
	}
	got, err := f.store.ReadCrawlList(f.sess)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("爬取列表 = %v\nwant %v", got, want)
	}

	if report.Total != len(want) {
		t.Errorf("report.Total = %d, want %d", report.Total, len(want))
	}
	if report.Duplicates != 1 {
		t.Errorf("report.Duplicates = %d, want 1", report.Duplicates)
	}
	if report.Kind != models.BuildInitial {
		t.Errorf("report.Kind = %q", report.Kind)
	}
	if _, err := os.Stat(filepath.Join(f.sess.Dir, BuildReportFile)); err != nil {
		t.Errorf("构建报告未写入: %v", err)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	f := newBuilderFixture(t, &fakeExpander{urls: []string{"http://example.com/about/"}})
	ctx := context.Background()

	if _, err := f.builder.BuildInitial(ctx, f.sess); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(f.store.ListPath(f.sess))

	if _, err := f.builder.BuildInitial(ctx, f.sess); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(f.store.ListPath(f.sess))

	if string(first) != string(second) {
		t.Errorf("两次构建结果不同:\n%s\n---\n%s", first, second)
	}
}

func TestBuildResetsProgress(t *testing.T) {
	f := newBuilderFixture(t, &fakeExpander{})

	if err := f.store.AppendCrawled(f.sess, "http://example.com/old/"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.builder.BuildInitial(context.Background(), f.sess); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(f.store.ProgressPath(f.sess))
	if err != nil {
		t.Fatalf("进度日志应存在: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("构建后进度日志大小 = %d, want 0", info.Size())
	}
}

func TestBuildFinalExtras(t *testing.T) {
	f := newBuilderFixture(t, &fakeExpander{urls: []string{"http://example.com/about/"}})

	extras := "http://example.com/feed/\r\n\n# comment\nnot a url\nhttp://example.com/about/\nftp://example.com/x\n"
	report, err := f.builder.BuildFinal(context.Background(), f.sess, extras)
	if err != nil {
		t.Fatalf("BuildFinal() error = %v", err)
	}

	want := []string{
		"http://example.com/",
		"http://example.com/wp-content/themes/t/style.css",
		"http://example.com/about/",
		"http://example.com/feed/",
		"http://example.com/wp-content/uploads/logo.png",
	}
	got, _ := f.store.ReadCrawlList(f.sess)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("爬取列表 = %v\nwant %v", got, want)
	}
	if report.Kind != models.BuildFinal || report.Sources.Extra != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestBuildFinalEmptyExtras(t *testing.T) {
	f := newBuilderFixture(t, &fakeExpander{})
	ctx := context.Background()

	initial, err := f.builder.BuildInitial(ctx, f.sess)
	if err != nil {
		t.Fatal(err)
	}
	final, err := f.builder.BuildFinal(ctx, f.sess, "")
	if err != nil {
		t.Fatal(err)
	}
	if initial.Total != final.Total {
		t.Errorf("无额外URL时最终构建应与初始构建相同: %d != %d", final.Total, initial.Total)
	}
}

func TestBuildConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BuilderConfig)
		field  string
	}{
		{"缺少站点地址", func(c *BuilderConfig) { c.SeedURL = "" }, "site.base_url"},
		{"站点地址无效", func(c *BuilderConfig) { c.SeedURL = "example.com" }, "site.base_url"},
		{"缺少上传目录映射", func(c *BuilderConfig) { c.Uploads = nil }, "site.uploads_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBuilderFixture(t, &fakeExpander{})
			tt.mutate(&f.builder.config)

			_, err := f.builder.BuildInitial(context.Background(), f.sess)
			var cfgErr *models.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("BuildInitial() error = %v, want ConfigurationError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("ConfigurationError.Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if _, err := os.Stat(f.store.ListPath(f.sess)); !os.IsNotExist(err) {
				t.Error("配置错误时不应写入爬取列表")
			}
		})
	}
}

func TestBuildRepositoryFailureKeepsPreviousList(t *testing.T) {
	expander := &fakeExpander{urls: []string{"http://example.com/about/"}}
	f := newBuilderFixture(t, expander)
	ctx := context.Background()

	if _, err := f.builder.BuildInitial(ctx, f.sess); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(f.store.ListPath(f.sess))

	expander.err = &models.RepositoryError{Op: "query_published", Cause: errors.New("database is locked")}
	_, err := f.builder.BuildInitial(ctx, f.sess)
	var repoErr *models.RepositoryError
	if !errors.As(err, &repoErr) {
		t.Fatalf("BuildInitial() error = %v, want RepositoryError", err)
	}

	after, _ := os.ReadFile(f.store.ListPath(f.sess))
	if string(before) != string(after) {
		t.Error("失败的构建不应修改已有列表")
	}
}

func TestBuildWithoutTheme(t *testing.T) {
	f := newBuilderFixture(t, &fakeExpander{})
	f.builder.config.Theme = nil

	report, err := f.builder.BuildInitial(context.Background(), f.sess)
	if err != nil {
		t.Fatalf("BuildInitial() error = %v", err)
	}
	if report.Sources.Theme != 0 || report.Total != 2 {
		t.Errorf("report = %+v, want seed + logo.png", report.Sources)
	}
}
