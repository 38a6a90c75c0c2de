package core

import (
	"fmt"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

// DiskMonitor 磁盘空间预检
// 创建会话目录之前确认工作目录所在分区还有足够空间
type DiskMonitor struct {
	minFreeBytes uint64

	// usage 可替换的采样函数,默认使用gopsutil
	usage func(path string) (*disk.UsageStat, error)
}

// NewDiskMonitor 创建磁盘监控器,minFreeMB<=0 时不做检查
func NewDiskMonitor(minFreeMB int) *DiskMonitor {
	var minFree uint64
	if minFreeMB > 0 {
		minFree = uint64(minFreeMB) * 1024 * 1024
	}
	return &DiskMonitor{minFreeBytes: minFree, usage: disk.Usage}
}

// Check 检查path所在分区的剩余空间
// 采样失败只记录警告,空间不足返回 FilesystemError
func (dm *DiskMonitor) Check(path string) error {
	if dm == nil || dm.minFreeBytes == 0 {
		return nil
	}

	stat, err := dm.usage(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("获取磁盘使用情况失败,跳过空间检查")
		return nil
	}

	log.Debug().
		Str("path", path).
		Float64("free_mb", float64(stat.Free)/(1024*1024)).
		Float64("used_percent", stat.UsedPercent).
		Msg("磁盘空间")

	if stat.Free < dm.minFreeBytes {
		return &models.FilesystemError{
			Op:    "disk_check",
			Path:  path,
			Cause: &insufficientSpaceError{free: stat.Free, required: dm.minFreeBytes},
		}
	}
	return nil
}

// insufficientSpaceError 剩余空间不足
type insufficientSpaceError struct {
	free     uint64
	required uint64
}

func (e *insufficientSpaceError) Error() string {
	return fmt.Sprintf("磁盘剩余空间不足: %.1fMB < %.1fMB", float64(e.free)/(1024*1024), float64(e.required)/(1024*1024))
}
