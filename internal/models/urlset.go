package models

// URLSet 保持插入顺序的URL集合
// 唯一性按字符串完全相等判断
type URLSet struct {
	order []string
	seen  map[string]bool
}

// NewURLSet 创建URL集合
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]bool)}
}

// Add 添加URL,返回是否为新条目
func (s *URLSet) Add(u string) bool {
	if s.seen[u] {
		return false
	}
	s.seen[u] = true
	s.order = append(s.order, u)
	return true
}

// AddAll 批量添加,返回新增数量
func (s *URLSet) AddAll(urls []string) int {
	added := 0
	for _, u := range urls {
		if s.Add(u) {
			added++
		}
	}
	return added
}

// Contains 检查URL是否已存在
func (s *URLSet) Contains(u string) bool {
	return s.seen[u]
}

// Len 集合大小
func (s *URLSet) Len() int {
	return len(s.order)
}

// List 按插入顺序返回副本
func (s *URLSet) List() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
