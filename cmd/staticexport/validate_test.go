package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/StaticExport/internal/models"
)

func TestCollectExtraURLs(t *testing.T) {
	file := filepath.Join(t.TempDir(), "extras.txt")
	if err := os.WriteFile(file, []byte("# 额外地址\nhttp://example.com/b/\n\nnot-a-url\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		flags []string
		file  string
		want  string
	}{
		{"没有额外URL", nil, "", ""},
		{"命令行URL", []string{" http://example.com/a/ "}, "", "http://example.com/a/"},
		{"命令行和文件", []string{"http://example.com/a/"}, file, "http://example.com/a/\nhttp://example.com/b/"},
		{"命令行URL无效时跳过", []string{"example.com/a", "http://example.com/c/"}, "", "http://example.com/c/"},
		{"文件不存在时忽略", []string{"http://example.com/a/"}, filepath.Join(t.TempDir(), "missing.txt"), "http://example.com/a/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collectExtraURLs(tt.flags, tt.file); got != tt.want {
				t.Errorf("collectExtraURLs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"配置错误", &models.ConfigurationError{Field: "site.base_url", Reason: "empty"}, 2},
		{"包装后的配置错误", fmt.Errorf("构建失败: %w", &models.ConfigurationError{Field: "x"}), 2},
		{"仓库错误", &models.RepositoryError{Op: "query_published", Cause: errors.New("locked")}, 3},
		{"文件系统错误", &models.FilesystemError{Op: "rmdir", Path: "/x", Cause: os.ErrPermission}, 4},
		{"其它错误", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
