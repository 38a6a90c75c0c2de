package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/RecoveryAshes/StaticExport/internal/config"
	"github.com/RecoveryAshes/StaticExport/internal/content"
	"github.com/RecoveryAshes/StaticExport/internal/core"
	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/utils"
	"github.com/spf13/cobra"
)

// 会话与构建参数
var (
	actor         string
	automated     bool
	finalBuild    bool
	extraURLFlags []string
	extraURLsFile string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "管理归档会话",
}

var sessionOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "打开(或复用)归档会话",
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := core.NewExporter(appConfig)
		if err != nil {
			return err
		}
		sess, err := exporter.Sessions().Open(requestContext())
		if err != nil {
			return fmt.Errorf("打开会话失败: %w", err)
		}
		fmt.Println(sess.Dir)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "显示当前会话和进度",
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := core.NewExporter(appConfig)
		if err != nil {
			return err
		}
		sess, err := exporter.Sessions().Current()
		if err != nil {
			return err
		}
		status, err := exporter.Sessions().Status(sess)
		if err != nil {
			return err
		}

		fmt.Println("==================================================")
		fmt.Printf("📁 会话目录: %s\n", status.Dir)
		if !sess.CreatedAt.IsZero() {
			fmt.Printf("🕐 创建时间: %s\n", sess.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		if sess.User != "" {
			fmt.Printf("👤 发起用户: %s\n", sess.User)
		}
		if status.HasCrawlList {
			fmt.Printf("📋 列表URL数: %d\n", status.ListedURLs)
			fmt.Printf("✅ 已爬取数: %d\n", status.CrawledURLs)
		} else {
			fmt.Println("📋 尚未构建爬取列表")
		}
		fmt.Println("==================================================")
		return nil
	},
}

var sessionRecordCmd = &cobra.Command{
	Use:   "record URL...",
	Short: "向当前会话的进度日志追加已爬取的URL",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := make([]string, 0, len(args))
		for _, arg := range args {
			if err := models.ValidateURL(arg); err != nil {
				return fmt.Errorf("无效的URL [%s]: %w", arg, err)
			}
			urls = append(urls, arg)
		}

		exporter, err := core.NewExporter(appConfig)
		if err != nil {
			return err
		}
		sess, err := exporter.Sessions().Current()
		if err != nil {
			return err
		}
		return exporter.Store().AppendCrawled(sess, urls...)
	},
}

var sessionCloseCmd = &cobra.Command{
	Use:   "close",
	Short: "删除当前会话目录",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrune()
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "构建爬取列表",
	Long: `构建爬取列表并写入当前会话目录

初始构建: 站点地址、主题文件、内容地址、上传文件
最终构建(--final): 在内容之后、上传之前并入额外URL
构建会清空会话的进度日志`,
	RunE: func(cmd *cobra.Command, args []string) error {
		extras := collectExtraURLs(extraURLFlags, extraURLsFile)
		if !finalBuild && extras != "" {
			utils.Warn("额外URL只在最终构建(--final)时并入,本次忽略")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		exporter, err := core.NewExporter(appConfig)
		if err != nil {
			return err
		}
		report, err := exporter.Build(ctx, requestContext(), finalBuild, extras)
		if err != nil {
			return fmt.Errorf("构建失败: %w", err)
		}

		fmt.Println("\n==================================================")
		fmt.Println("📊 爬取列表统计")
		fmt.Println("==================================================")
		fmt.Printf("🔖 构建类型: %s\n", report.Kind)
		fmt.Printf("🎨 主题文件: %d\n", report.Sources.Theme)
		fmt.Printf("📝 内容地址: %d\n", report.Sources.Content)
		fmt.Printf("➕ 额外地址: %d\n", report.Sources.Extra)
		fmt.Printf("📦 上传文件: %d\n", report.Sources.Uploads)
		fmt.Printf("🔄 重复项: %d\n", report.Duplicates)
		fmt.Printf("✅ 列表总数: %d\n", report.Total)
		fmt.Printf("📋 列表文件: %s\n", report.ListPath)
		fmt.Printf("⏱️  总耗时: %.2f秒\n", report.Duration)
		fmt.Println("==================================================")
		return nil
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "删除当前会话目录和会话指针",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrune()
	},
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "管理内容仓库",
}

var contentImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "从YAML文件导入内容到SQLite仓库",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := content.OpenSQLite(appConfig.Content.Database, appConfig.Site.BaseURL, appConfig.Content.PermalinkStructure)
		if err != nil {
			return err
		}
		defer repo.Close()

		summary, err := repo.ImportFixtureFile(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("导入失败: %w", err)
		}
		utils.Infof("✅ 导入完成: 内容 %d, 分类法 %d, 词条 %d", summary.Posts, summary.Taxonomies, summary.Terms)
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "配置文件管理",
}

var configInitCmd = &cobra.Command{
	Use:   "init [PATH]",
	Short: "生成默认配置文件",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		created, err := config.EnsureConfigExists(path)
		if err != nil {
			return err
		}
		if created {
			utils.Infof("✅ 已生成配置文件: %s", path)
		} else {
			utils.Infof("配置文件已存在: %s", path)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{sessionOpenCmd, buildCmd} {
		cmd.Flags().StringVar(&actor, "user", "", "发起导出的用户名(非自动化时拼入会话目录名)")
		cmd.Flags().BoolVar(&automated, "automated", false, "自动化流程发起(定时任务等)")
	}

	buildCmd.Flags().BoolVar(&finalBuild, "final", false, "最终构建,并入额外URL")
	buildCmd.Flags().StringArrayVar(&extraURLFlags, "extra-url", []string{}, "额外URL,可多次指定")
	buildCmd.Flags().StringVar(&extraURLsFile, "extra-urls-file", "", "包含额外URL的文件,每行一个")

	sessionCmd.AddCommand(sessionOpenCmd, sessionShowCmd, sessionRecordCmd, sessionCloseCmd)
	contentCmd.AddCommand(contentImportCmd)
	configCmd.AddCommand(configInitCmd)
}

// runPrune 关闭当前会话
func runPrune() error {
	exporter, err := core.NewExporter(appConfig)
	if err != nil {
		return err
	}
	removed, err := exporter.Prune()
	if errors.Is(err, models.ErrNoActiveSession) {
		utils.Info("没有活动的导出会话")
		return nil
	}
	if err != nil {
		return fmt.Errorf("删除会话失败: %w", err)
	}
	if !removed {
		utils.Info("会话目录已不存在,已清除会话指针")
	}
	return nil
}

// requestContext 由命令行参数构造请求上下文
func requestContext() models.RequestContext {
	return models.RequestContext{
		Actor:       strings.TrimSpace(actor),
		Automated:   automated,
		RequestPath: strings.Join(os.Args[1:], " "),
	}
}
