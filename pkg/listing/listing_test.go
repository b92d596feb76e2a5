package listing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	Name  string
	Price float64
	Stock int
}

func sampleRows(n int) []row {
	rows := make([]row, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, row{
			Name:  fmt.Sprintf("item-%02d", i),
			Price: float64(i * 10),
			Stock: i % 5,
		})
	}
	return rows
}

func TestFilter_Conjunction(t *testing.T) {
	rows := sampleRows(20)

	inStock := func(r row) bool { return r.Stock > 0 }
	cheap := func(r row) bool { return r.Price <= 100 }

	one := Filter(rows, inStock)
	both := Filter(rows, inStock, cheap)

	// 追加谓词只会缩小结果集
	assert.LessOrEqual(t, len(both), len(one))

	for _, r := range both {
		assert.True(t, inStock(r) && cheap(r), "行 %s 不满足全部谓词", r.Name)
	}
	// 反向：被剔除的行至少违反一个谓词
	kept := make(map[string]bool, len(both))
	for _, r := range both {
		kept[r.Name] = true
	}
	for _, r := range rows {
		if !kept[r.Name] {
			assert.False(t, inStock(r) && cheap(r))
		}
	}
}

func TestApply_SortReversal(t *testing.T) {
	rows := sampleRows(15)

	asc := Apply(rows, Query[row]{
		Sort:     func(a, b row) bool { return strings.Compare(a.Name, b.Name) < 0 },
		PageSize: 100,
	})
	desc := Apply(rows, Query[row]{
		Sort:     func(a, b row) bool { return strings.Compare(a.Name, b.Name) > 0 },
		PageSize: 100,
	})

	// 名称唯一时 name_desc 正好是 name_asc 的逆序
	n := len(asc.Items)
	assert.Equal(t, n, len(desc.Items))
	for i := 0; i < n; i++ {
		assert.Equal(t, asc.Items[i].Name, desc.Items[n-1-i].Name)
	}
}

func TestApply_PaginationCompleteness(t *testing.T) {
	// 23 条 pageSize=10 → 三页：10/10/3
	rows := sampleRows(23)

	first := Apply(rows, Query[row]{Page: 1, PageSize: 10})
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, int64(23), first.Total)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, "item-01", first.Items[0].Name)

	third := Apply(rows, Query[row]{Page: 3, PageSize: 10})
	assert.Len(t, third.Items, 3)
	assert.Equal(t, "item-21", third.Items[0].Name)
	assert.Equal(t, "item-23", third.Items[2].Name)

	// 所有页的并集无重无漏地还原过滤集
	seen := make(map[string]int)
	for p := 1; p <= first.TotalPages; p++ {
		res := Apply(rows, Query[row]{Page: p, PageSize: 10})
		for _, r := range res.Items {
			seen[r.Name]++
		}
	}
	assert.Len(t, seen, 23)
	for name, count := range seen {
		assert.Equal(t, 1, count, "%s 出现 %d 次", name, count)
	}
}

func TestApply_PageBeyondRange(t *testing.T) {
	rows := sampleRows(5)
	res := Apply(rows, Query[row]{Page: 9, PageSize: 10})
	assert.Empty(t, res.Items)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, 1, res.TotalPages)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(23, 10))
}
