package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const testMarker = "static-html-output"

func newTestFilter() *Filter {
	return NewFilter([]string{testMarker, PreviousExportMarker}, DefaultDeniedExtensions)
}

// writeFiles 在root下创建文件,路径使用斜杠分隔
func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFilter_IsCrawlable(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"export.php",
		"template.TPL",
		"style.css",
		"LICENSE",
		"static-html-output-1700000000/index.html",
		"previous-export/logo.png",
		"sub/script.js",
	)
	if err := os.MkdirAll(filepath.Join(root, "emptydir"), 0755); err != nil {
		t.Fatal(err)
	}

	f := newTestFilter()
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"PHP文件被排除", "export.php", false},
		{"扩展名大小写不敏感", "template.TPL", false},
		{"普通样式文件", "style.css", true},
		{"无扩展名文件可爬取", "LICENSE", true},
		{"工作目录中的文件被排除", "static-html-output-1700000000/index.html", false},
		{"旧导出中的文件被排除", "previous-export/logo.png", false},
		{"子目录中的脚本", "sub/script.js", true},
		{"目录不是文件", "emptydir", false},
		{"不存在的文件", "missing.css", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(root, filepath.FromSlash(tt.path))
			if got := f.IsCrawlable(path); got != tt.want {
				t.Errorf("IsCrawlable(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRootMapping_URLFor(t *testing.T) {
	root := t.TempDir()
	m, err := NewRootMapping(root, "http://example.com/wp-content/uploads")
	if err != nil {
		t.Fatalf("NewRootMapping() error = %v", err)
	}

	t.Run("目录内的文件", func(t *testing.T) {
		got, ok := m.URLFor(filepath.Join(root, "2020", "05", "logo.png"))
		if !ok || got != "http://example.com/wp-content/uploads/2020/05/logo.png" {
			t.Errorf("URLFor() = %q, %v", got, ok)
		}
	})

	t.Run("文件名中的空格被转义", func(t *testing.T) {
		got, ok := m.URLFor(filepath.Join(root, "my logo.png"))
		if !ok || got != "http://example.com/wp-content/uploads/my%20logo.png" {
			t.Errorf("URLFor() = %q, %v", got, ok)
		}
	})

	t.Run("目录外的路径不做替换", func(t *testing.T) {
		if got, ok := m.URLFor(filepath.Join(filepath.Dir(root), "other", "x.png")); ok {
			t.Errorf("URLFor() = %q, 期望失败", got)
		}
	})

	t.Run("相对URL前缀无效", func(t *testing.T) {
		if _, err := NewRootMapping(root, "/wp-content/uploads"); err == nil {
			t.Error("相对URL前缀应该报错")
		}
	})
}

func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"logo.png",
		"readme.php",
		"2020/05/photo.jpg",
		".git/config",
		".git/objects/ab",
		"static-html-output-1700000000-admin/index.html",
	)

	m, err := NewRootMapping(root, "http://example.com/uploads/")
	if err != nil {
		t.Fatal(err)
	}

	urls, err := NewScanner(newTestFilter(), 0).Scan(context.Background(), m)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []string{
		"http://example.com/uploads/2020/05/photo.jpg",
		"http://example.com/uploads/logo.png",
	}
	if len(urls) != len(want) {
		t.Fatalf("Scan() = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("Scan()[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestScanner_MarkerAboveRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "previous-exports-backup", "site", "uploads")
	writeFiles(t, root,
		"logo.png",
		"css/style.css",
		"previous-export-2019/index.html",
		"static-html-output-1700000000/list.txt",
	)

	m, err := NewRootMapping(root, "http://example.com/uploads/")
	if err != nil {
		t.Fatal(err)
	}

	urls, err := NewScanner(newTestFilter(), 0).Scan(context.Background(), m)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []string{
		"http://example.com/uploads/css/style.css",
		"http://example.com/uploads/logo.png",
	}
	if len(urls) != len(want) {
		t.Fatalf("Scan() = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("Scan()[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestFilter_IsCrawlableUnder(t *testing.T) {
	base := filepath.Join(t.TempDir(), "previous-export-site")
	writeFiles(t, base, "a.png", "previous-export/b.png", "c.php")
	f := newTestFilter()

	tests := []struct {
		name string
		root string
		path string
		want bool
	}{
		{"根目录以上的标记不计", base, "a.png", true},
		{"根目录以下的标记排除", base, "previous-export/b.png", false},
		{"扩展名仍然排除", base, "c.php", false},
		{"不在根目录下时按完整路径判断", filepath.Join(base, "previous-export"), "a.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(base, filepath.FromSlash(tt.path))
			if got := f.IsCrawlableUnder(tt.root, path); got != tt.want {
				t.Errorf("IsCrawlableUnder(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestScanner_MissingRoot(t *testing.T) {
	s := NewScanner(newTestFilter(), 0)

	t.Run("目录不存在", func(t *testing.T) {
		m, _ := NewRootMapping(filepath.Join(t.TempDir(), "missing"), "http://example.com/")
		urls, err := s.Scan(context.Background(), m)
		if err != nil {
			t.Fatalf("不存在的目录不应报错: %v", err)
		}
		if len(urls) != 0 {
			t.Errorf("期望空结果, 得到 %v", urls)
		}
	})

	t.Run("根路径是文件", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "file.txt")
		m, _ := NewRootMapping(filepath.Join(root, "file.txt"), "http://example.com/")
		urls, err := s.Scan(context.Background(), m)
		if err != nil || len(urls) != 0 {
			t.Errorf("Scan() = %v, %v; 期望空结果", urls, err)
		}
	})
}

func TestScanner_SymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("符号链接需要额外权限")
	}

	root := t.TempDir()
	writeFiles(t, root, "a/b/file.css")
	if err := os.Symlink(root, filepath.Join(root, "a", "b", "loop")); err != nil {
		t.Fatal(err)
	}

	m, _ := NewRootMapping(root, "http://example.com/")
	urls, err := NewScanner(newTestFilter(), 0).Scan(context.Background(), m)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(urls) != 1 || urls[0] != "http://example.com/a/b/file.css" {
		t.Errorf("Scan() = %v", urls)
	}
}

func TestScanner_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "top.css", "one/mid.css", "one/two/deep.css")

	m, _ := NewRootMapping(root, "http://example.com/")
	urls, err := NewScanner(newTestFilter(), 1).Scan(context.Background(), m)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	want := []string{"http://example.com/one/mid.css", "http://example.com/top.css"}
	if len(urls) != len(want) || urls[0] != want[0] || urls[1] != want[1] {
		t.Errorf("Scan() = %v, want %v", urls, want)
	}
}

func TestScanner_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.css")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, _ := NewRootMapping(root, "http://example.com/")
	if _, err := NewScanner(newTestFilter(), 0).Scan(ctx, m); err == nil {
		t.Error("已取消的context应该返回错误")
	}
}
