// Package scanner 提供本地文件树到公开URL的扫描功能
//
// # 概述
//
// scanner包负责导出前的本地文件发现: 判断文件是否可爬取、遍历主题和上传目录、
// 把本地路径映射为公开URL,以及删除会话目录。内容数据库派生的URL由content包负责。
//
// # 核心组件
//
// ## Filter (可爬取性过滤器)
//
// 纯谓词,决定一个本地文件能否进入爬取列表。以下情况排除:
//   - 路径不存在或不是普通文件
//   - 任一路径片段包含排除标记(工具工作目录名、previous-export)
//   - 扩展名在禁止列表中(默认 php, phtml, tpl,大小写不敏感)
//
// 没有扩展名的文件可以爬取。
//
//	filter := NewFilter([]string{"static-html-output", PreviousExportMarker}, DefaultDeniedExtensions)
//	ok := filter.IsCrawlable("/srv/uploads/2020/05/logo.png")
//
// ## RootMapping (目录映射)
//
// 本地根目录和公开URL前缀的结构化对应关系。路径先经 filepath.Rel 求相对路径,
// 再按片段拼接到URL上,不在根目录下的路径直接返回false。
//
//	mapping, err := NewRootMapping("/srv/uploads", "http://example.com/wp-content/uploads")
//	u, ok := mapping.URLFor("/srv/uploads/a b.png") // http://example.com/wp-content/uploads/a%20b.png
//
// ## Scanner (文件树扫描器)
//
// 显式栈遍历,记录已访问目录的真实路径防止符号链接成环,深度受 MaxDepth 限制。
// 根目录缺失时返回空结果,结果排序后返回。
//
//	sc := NewScanner(filter, DefaultMaxDepth)
//	urls, err := sc.Scan(ctx, mapping)
//
// ## DeleteTree (目录删除)
//
// 迭代删除整个目录树。符号链接只删除链接本身,从不进入,
// 因此会话目录中指向站点其它位置的链接不会波及目标。
//
//	removed, err := DeleteTree(sessionDir)
package scanner
