package model

import "time"

// ==================== 报表统计 ====================

// RevenueStats 营收统计
type RevenueStats struct {
	TotalRevenue   float64            `json:"totalRevenue"`
	RevenueByMonth map[string]float64 `json:"revenueByMonth"` // "2026-08" -> 金额
	PaidOrders     int64              `json:"paidOrders"`
}

// ProductStats 商品统计
type ProductStats struct {
	Total       int64 `json:"total"`
	Active      int64 `json:"active"`
	Featured    int64 `json:"featured"`
	OutOfStock  int64 `json:"outOfStock"`
	LowStock    int64 `json:"lowStock"`
	TotalSold   int64 `json:"totalSold"`
	TotalInShop int64 `json:"totalInShop"`
}

// UserStats 用户统计
type UserStats struct {
	Total    int64            `json:"total"`
	Enabled  int64            `json:"enabled"`
	Disabled int64            `json:"disabled"`
	ByRole   map[string]int64 `json:"byRole"`
}

// OrderStats 订单统计
type OrderStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"byStatus"`
	Today    int64            `json:"today"`
}

// StatsSnapshot 统计快照表
// 定时任务周期性重算并覆盖，仪表盘读取走这里而不是实时聚合
type StatsSnapshot struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Section     string    `gorm:"size:32;uniqueIndex;not null" json:"section"` // revenue/products/users/orders
	Payload     []byte    `gorm:"type:jsonb" json:"-"`
	GeneratedAt time.Time `json:"generatedAt"`
}

func (StatsSnapshot) TableName() string {
	return "stats_snapshots"
}
