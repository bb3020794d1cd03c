// Package log provides module-scoped structured loggers: each package
// declares "var logger = log.NewModuleLogger(log.ModuleX)" once and logs
// through it with alternating key/value pairs.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ModuleName enumerates the packages that obtain their own logger, so
// log lines can be filtered/attributed by subsystem.
type ModuleName string

const (
	ModuleWSV        ModuleName = "wsv"
	ModuleExecutor   ModuleName = "executor"
	ModuleBlockStore ModuleName = "blockstore"
	ModuleMST        ModuleName = "mst"
	ModuleSimulator  ModuleName = "simulator"
	ModuleStatusBus  ModuleName = "statusbus"
	ModuleQuery      ModuleName = "query"
	ModuleCommon     ModuleName = "common"
	ModuleCrypto     ModuleName = "crypto"
	ModuleNode       ModuleName = "node"
)

var base *zap.SugaredLogger

func init() {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(os.Stderr), zap.NewAtomicLevelAt(zap.InfoLevel))
	base = zap.New(core).Sugar()
}

// Logger is the per-module logging handle used across the core:
// Trace/Debug/Info/Warn/Error/Crit taking alternating key/value pairs.
type Logger struct {
	module ModuleName
	sugar  *zap.SugaredLogger
}

// NewModuleLogger returns a Logger scoped to module.
func NewModuleLogger(module ModuleName) Logger {
	return Logger{module: module, sugar: base.With("module", string(module))}
}

// New returns a logger scoped by the given key/value context pairs.
func New(kv ...interface{}) Logger {
	return Logger{sugar: base.With(kv...)}
}

func (l Logger) With(kv ...interface{}) Logger {
	return Logger{module: l.module, sugar: l.sugar.With(kv...)}
}

func (l Logger) Trace(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }

// Crit logs at error level then terminates the process, reserved for
// committed-state invariant violations the node must not continue past.
func (l Logger) Crit(msg string, kv ...interface{}) {
	l.sugar.Errorw(msg, kv...)
	os.Exit(1)
}
