//go:build unix

package utils

import (
	"os"

	"golang.org/x/sys/unix"
)

// LockFile 对文件加排他锁(阻塞),与外部爬取器的追加写入互斥
func LockFile(f *os.File) error {
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			return err
		}
	}
}

// UnlockFile 释放文件锁
func UnlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
