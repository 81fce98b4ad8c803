package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	baseLogger := zap.NewNop()

	cfg := LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "print-bridge-test",
	}

	provider, err := NewLoggerProvider(ctx, cfg, baseLogger)
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.False(t, provider.IsEnabled())
	assert.Nil(t, provider.GetLoggerProvider())

	err = provider.Shutdown(ctx)
	assert.NoError(t, err)
}

func TestLoggerProvider_GetConfig(t *testing.T) {
	ctx := context.Background()

	cfg := LogsConfig{
		Enabled:           false,
		CollectorEndpoint: "collector:4317",
		ServiceName:       "print-bridge-test",
		Insecure:          true,
	}

	provider, err := NewLoggerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	gotCfg := provider.GetConfig()
	assert.Equal(t, cfg.CollectorEndpoint, gotCfg.CollectorEndpoint)
	assert.Equal(t, cfg.ServiceName, gotCfg.ServiceName)
	assert.True(t, gotCfg.Insecure)
}

func TestLoggerProvider_ForceFlush_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, provider.ForceFlush(ctx))
}

func TestNewZapOTELCore_NilProvider(t *testing.T) {
	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "print-bridge-test",
		LoggerProvider: nil,
		Level:          zapcore.InfoLevel,
	})

	require.NotNil(t, core)
	// A nop core swallows everything
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCore_DisabledProvider(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "print-bridge-test",
		LoggerProvider: provider,
		Level:          zapcore.InfoLevel,
	})

	require.NotNil(t, core)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestLevelFilterCore(t *testing.T) {
	observedZapCore, observedLogs := observer.New(zapcore.DebugLevel)

	filteredCore := &levelFilterCore{
		Core:     observedZapCore,
		minLevel: zapcore.WarnLevel,
	}

	assert.True(t, filteredCore.Enabled(zapcore.WarnLevel))
	assert.True(t, filteredCore.Enabled(zapcore.ErrorLevel))
	assert.False(t, filteredCore.Enabled(zapcore.InfoLevel))
	assert.False(t, filteredCore.Enabled(zapcore.DebugLevel))

	logger := zap.New(filteredCore)
	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	logs := observedLogs.All()
	assert.Len(t, logs, 2)
	assert.Equal(t, "warn", logs[0].Message)
	assert.Equal(t, "error", logs[1].Message)
}

func TestLevelFilterCore_With(t *testing.T) {
	observedZapCore, observedLogs := observer.New(zapcore.DebugLevel)

	filteredCore := &levelFilterCore{
		Core:     observedZapCore,
		minLevel: zapcore.WarnLevel,
	}

	childCore := filteredCore.With([]zapcore.Field{zap.String("component", "spool")})
	require.NotNil(t, childCore)

	// With must preserve the filtering wrapper
	lfCore, ok := childCore.(*levelFilterCore)
	require.True(t, ok)
	assert.Equal(t, zapcore.WarnLevel, lfCore.minLevel)

	logger := zap.New(childCore)
	logger.Warn("queue stalled")

	logs := observedLogs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "queue stalled", logs[0].Message)

	hasComponentField := false
	for _, field := range logs[0].Context {
		if field.Key == "component" && field.String == "spool" {
			hasComponentField = true
			break
		}
	}
	assert.True(t, hasComponentField, "component field should be present")
}

func TestNewLoggerProvider_EnabledButNoCollector(t *testing.T) {
	ctx := context.Background()
	baseLogger := zap.NewNop()

	cfg := LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999", // nothing listens here
		ServiceName:       "print-bridge-test",
		Insecure:          true,
	}

	// Succeeds without a collector: the batch processor buffers records
	// until they can be sent.
	provider, err := NewLoggerProvider(ctx, cfg, baseLogger)
	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.True(t, provider.IsEnabled())
	assert.NotNil(t, provider.GetLoggerProvider())

	err = provider.Shutdown(ctx)
	assert.NoError(t, err)
}

func TestNewZapOTELCore_WithLevelFilter(t *testing.T) {
	ctx := context.Background()
	baseLogger := zap.NewNop()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "print-bridge-test",
		Insecure:          true,
	}, baseLogger)
	require.NoError(t, err)
	defer func() {
		_ = provider.Shutdown(ctx)
	}()

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "print-bridge-test",
		LoggerProvider: provider,
		Level:          zapcore.WarnLevel,
	})
	require.NotNil(t, core)

	_, isFiltered := core.(*levelFilterCore)
	assert.True(t, isFiltered, "core should be wrapped with levelFilterCore")

	assert.False(t, core.Enabled(zapcore.DebugLevel))
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNewZapOTELCore_DebugLevelUnwrapped(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:19999",
		ServiceName:       "print-bridge-test",
		Insecure:          true,
	}, zap.NewNop())
	require.NoError(t, err)
	defer func() {
		_ = provider.Shutdown(ctx)
	}()

	core := NewZapOTELCore(ZapBridgeConfig{
		ServiceName:    "print-bridge-test",
		LoggerProvider: provider,
		Level:          zapcore.DebugLevel,
	})
	require.NotNil(t, core)

	// Debug lets everything through, no wrapper needed
	_, isFiltered := core.(*levelFilterCore)
	assert.False(t, isFiltered)
}

func TestLoggerProvider_Shutdown_MultipleCalls(t *testing.T) {
	ctx := context.Background()

	provider, err := NewLoggerProvider(ctx, LogsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, provider.Shutdown(ctx))
	assert.NoError(t, provider.Shutdown(ctx))
}
