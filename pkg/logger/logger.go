package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L 全局日志器，Init 之前为 no-op
var L = zap.NewNop()

// Init 初始化全局日志器
// mode 为 debug 时输出易读格式，否则输出 JSON
func Init(mode string) error {
	var cfg zap.Config
	if mode == "debug" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	log, err := cfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		return err
	}
	L = log
	return nil
}

// Sync 退出前刷新缓冲日志
func Sync() {
	_ = L.Sync()
}
