package logger

import (
	"go.uber.org/zap"
)

// L 进程级 logger，Init 之前为 no-op
var L = zap.NewNop()

// Init 初始化全局 logger
// mode: "release" 使用生产配置（JSON），否则开发配置（彩色控制台）
func Init(mode string) error {
	var (
		l   *zap.Logger
		err error
	)
	if mode == "release" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	L = l
	zap.ReplaceGlobals(l)
	return nil
}

// Sync 刷新缓冲日志，进程退出前调用
func Sync() {
	_ = L.Sync()
}
