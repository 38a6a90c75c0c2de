package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDeleteTree(t *testing.T) {
	t.Run("删除整棵目录树", func(t *testing.T) {
		root := t.TempDir()
		target := filepath.Join(root, "session")
		writeFiles(t, target, "a.txt", "x/y/z.txt", "x/empty/.keep")

		ok, err := DeleteTree(target)
		if err != nil || !ok {
			t.Fatalf("DeleteTree() = %v, %v", ok, err)
		}
		if _, err := os.Lstat(target); !os.IsNotExist(err) {
			t.Error("目录应该已被删除")
		}
	})

	t.Run("非目录是空操作", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "file.txt")
		path := filepath.Join(root, "file.txt")

		ok, err := DeleteTree(path)
		if err != nil || ok {
			t.Errorf("DeleteTree() = %v, %v; want false, nil", ok, err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Error("文件不应被删除")
		}
	})

	t.Run("不存在的路径是空操作", func(t *testing.T) {
		ok, err := DeleteTree(filepath.Join(t.TempDir(), "missing"))
		if err != nil || ok {
			t.Errorf("DeleteTree() = %v, %v; want false, nil", ok, err)
		}
	})
}

func TestDeleteTree_DoesNotFollowSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("符号链接需要额外权限")
	}

	root := t.TempDir()
	outside := filepath.Join(root, "outside")
	target := filepath.Join(root, "session")
	writeFiles(t, outside, "keep.txt")
	writeFiles(t, target, "a.txt")

	if err := os.Symlink(outside, filepath.Join(target, "link")); err != nil {
		t.Fatal(err)
	}

	ok, err := DeleteTree(target)
	if err != nil || !ok {
		t.Fatalf("DeleteTree() = %v, %v", ok, err)
	}
	if _, err := os.Stat(filepath.Join(outside, "keep.txt")); err != nil {
		t.Errorf("链接目标外的文件被删除了: %v", err)
	}

	t.Run("指向目录的符号链接本身是空操作", func(t *testing.T) {
		link := filepath.Join(root, "dirlink")
		if err := os.Symlink(outside, link); err != nil {
			t.Fatal(err)
		}
		ok, err := DeleteTree(link)
		if err != nil || ok {
			t.Errorf("DeleteTree() = %v, %v; want false, nil", ok, err)
		}
		if _, err := os.Stat(filepath.Join(outside, "keep.txt")); err != nil {
			t.Error("链接目标不应被删除")
		}
	})
}
