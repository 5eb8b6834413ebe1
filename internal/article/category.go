package article

import "strings"

// CategoryAll 表示不按分类过滤。
const CategoryAll = "All"

// Categories 首页分类标签，顺序即展示顺序。
var Categories = []string{CategoryAll, "World", "Tech", "Culture", "Business", "Design", "Science"}

// IsCategory 判断是否为已知分类（区分大小写，与标签一致）。
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// IsAll 空分类与 All 等价。
func IsAll(category string) bool {
	category = strings.TrimSpace(category)
	return category == "" || strings.EqualFold(category, CategoryAll)
}
