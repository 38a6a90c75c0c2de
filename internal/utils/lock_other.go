//go:build !unix

package utils

import "os"

// LockFile 非unix平台没有flock,依赖O_APPEND的单次写入
func LockFile(f *os.File) error {
	return nil
}

// UnlockFile 释放文件锁
func UnlockFile(f *os.File) error {
	return nil
}
