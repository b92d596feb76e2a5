package listing

import "sort"

// ==================== 通用列表查询 ====================
// 过滤（谓词合取）→ 排序（单比较器，稳定）→ 分页（偏移切片）
// 各实体的管理端列表共用这一套，不再每个页面重写一遍

// Predicate 过滤谓词，任意一个不满足即剔除该行
type Predicate[T any] func(T) bool

// Less 排序比较器
type Less[T any] func(a, b T) bool

// Query 查询参数
type Query[T any] struct {
	Predicates []Predicate[T]
	Sort       Less[T] // 为 nil 时保持原顺序
	Page       int     // 从 1 开始
	PageSize   int
}

// Result 查询结果
type Result[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"` // 过滤后总数
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// Apply 对内存中的切片执行过滤、排序、分页
func Apply[T any](items []T, q Query[T]) Result[T] {
	filtered := Filter(items, q.Predicates...)

	if q.Sort != nil {
		sort.SliceStable(filtered, func(i, j int) bool {
			return q.Sort(filtered[i], filtered[j])
		})
	}

	page := q.Page
	if page <= 0 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	total := len(filtered)
	totalPages := TotalPages(total, pageSize)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Result[T]{
		Items:      filtered[start:end],
		Total:      int64(total),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Filter 谓词合取过滤
func Filter[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		keep := true
		for _, p := range preds {
			if p == nil {
				continue
			}
			if !p(it) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

// TotalPages ceil(total / pageSize)
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
