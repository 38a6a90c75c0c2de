package main

import (
	"errors"
	"strings"

	"github.com/RecoveryAshes/StaticExport/internal/models"
	"github.com/RecoveryAshes/StaticExport/internal/utils"
)

// collectExtraURLs 合并 --extra-url 和 --extra-urls-file,返回换行分隔的列表
// 额外URL是可选输入: 无效的URL和读不到的文件记录警告后按没有处理
func collectExtraURLs(flags []string, file string) string {
	lines := make([]string, 0, len(flags))
	for _, u := range flags {
		u = strings.TrimSpace(u)
		if err := models.ValidateURL(u); err != nil {
			utils.Warnf("跳过无效的额外URL [%s]: %v", u, err)
			continue
		}
		lines = append(lines, u)
	}

	if file != "" {
		urls, err := utils.ReadURLsFromFile(file)
		if err != nil {
			utils.Warnf("忽略额外URL文件: %v", err)
		} else {
			lines = append(lines, urls...)
		}
	}

	return strings.Join(lines, "\n")
}

// exitCode 按错误类型区分退出码
func exitCode(err error) int {
	var cfgErr *models.ConfigurationError
	var confFileErr *models.ConfigError
	var repoErr *models.RepositoryError
	var fsErr *models.FilesystemError

	switch {
	case errors.As(err, &cfgErr), errors.As(err, &confFileErr):
		return 2
	case errors.As(err, &repoErr):
		return 3
	case errors.As(err, &fsErr):
		return 4
	default:
		return 1
	}
}
