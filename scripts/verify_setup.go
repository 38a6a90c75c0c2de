package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/RecoveryAshes/StaticExport/internal/config"
	"github.com/RecoveryAshes/StaticExport/internal/content"
	"github.com/shirou/gopsutil/v3/disk"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  StaticExport 环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	// 检查Go版本
	goVersion := runtime.Version()
	fmt.Printf("✅ Go版本: %s\n", goVersion)
	if !strings.HasPrefix(goVersion, "go1.23") && !strings.HasPrefix(goVersion, "go1.24") {
		fmt.Println("⚠️  警告: 建议使用Go 1.23+版本")
	}
	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// 检查配置文件
	fmt.Println()
	fmt.Println("检查配置...")
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("❌ 配置加载失败: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ 配置验证失败: %v\n", err)
		fmt.Println("   运行 'staticexport config init' 生成配置模板")
		allOK = false
	} else {
		fmt.Printf("✅ 站点地址: %s\n", cfg.Site.BaseURL)
	}

	// 检查站点目录
	fmt.Println()
	fmt.Println("检查站点目录...")
	for name, dir := range map[string]string{
		"主题目录": cfg.Site.ThemeDir,
		"上传目录": cfg.Site.UploadsDir,
	} {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fmt.Printf("✅ %s: %s\n", name, dir)
		} else {
			fmt.Printf("⚠️  %s不存在: %s (扫描结果将为空)\n", name, dir)
		}
	}

	// 检查工作目录可写和剩余空间
	if dir := cfg.Export.WorkingDir; dir != "" {
		if err := checkWritable(dir); err != nil {
			fmt.Printf("❌ 工作目录不可写: %v\n", err)
			allOK = false
		} else {
			fmt.Printf("✅ 工作目录可写: %s\n", dir)
		}

		if usage, err := disk.Usage(dir); err == nil {
			freeMB := usage.Free / (1024 * 1024)
			if int(freeMB) < cfg.Export.MinFreeDiskMB {
				fmt.Printf("❌ 剩余空间不足: %dMB < %dMB\n", freeMB, cfg.Export.MinFreeDiskMB)
				allOK = false
			} else {
				fmt.Printf("✅ 剩余空间: %dMB (已用 %.1f%%)\n", freeMB, usage.UsedPercent)
			}
		}
	}

	// 检查内容数据库
	fmt.Println()
	fmt.Println("检查内容数据库...")
	repo, err := content.OpenSQLite(cfg.Content.Database, cfg.Site.BaseURL, cfg.Content.PermalinkStructure)
	if err != nil {
		fmt.Printf("❌ 无法打开内容数据库: %v\n", err)
		allOK = false
	} else {
		fmt.Printf("✅ 内容数据库: %s\n", repo.Path())
		_ = repo.Close()
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'staticexport content import content.yaml' 导入内容")
		fmt.Println("  2. 运行 'staticexport build' 构建爬取列表")
		os.Exit(0)
	}
	fmt.Println("❌ 环境验证失败,请解决上述问题。")
	os.Exit(1)
}

// checkWritable 在目录中创建并删除一个临时文件
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".staticexport-verify-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(filepath.Clean(name))
}
