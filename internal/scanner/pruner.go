package scanner

import (
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/utils"
)

// DeleteTree 递归删除目录及其全部内容
// path不是目录(包括指向目录的符号链接)时什么都不做,返回false。
// 符号链接只解除链接,永远不会进入其指向的目录。
func DeleteTree(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return false, nil
	}

	// 先序收集目录,同时删除非目录条目;最后逆序删除目录(最深的先删)
	dirs := []string{path}
	stack := []string{path}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return false, &models.FilesystemError{Op: "readdir", Path: dir, Cause: err}
		}

		for _, entry := range entries {
			child := filepath.Join(dir, entry.Name())
			// DirEntry.Type 来自Lstat语义,符号链接不会被当成目录
			if entry.Type().IsDir() {
				dirs = append(dirs, child)
				stack = append(stack, child)
				continue
			}
			if err := os.Remove(child); err != nil && !os.IsNotExist(err) {
				return false, &models.FilesystemError{Op: "unlink", Path: child, Cause: err}
			}
		}
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Remove(dirs[i]); err != nil && !os.IsNotExist(err) {
			return false, &models.FilesystemError{Op: "rmdir", Path: dirs[i], Cause: err}
		}
	}

	utils.Debugf("已删除目录: %s (%d 个子目录)", path, len(dirs)-1)
	return true, nil
}
