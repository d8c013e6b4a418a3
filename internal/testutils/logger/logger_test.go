package logger

import (
	"fmt"
	"log/slog"
	"testing"
)

func Test_defaultLogCfg(t *testing.T) {
	t.Setenv("MINTLY_TEST_LOG_LEVEL", "warn")
	t.Setenv("MINTLY_TEST_LOG_NO_COLORS", "true")

	cfg := defaultLogCfg()
	if lvl := cfg.LogLevel(); lvl != slog.LevelWarn {
		t.Errorf("expected level %s, got %s", slog.LevelWarn, lvl)
	}
	if !*cfg.NoColor {
		t.Error("expected colors to be disabled")
	}
}

func Test_logger_for_tests_color(t *testing.T) {
	t.Skip("this test is only for visually checking the output")

	t.Run("colors disabled", func(t *testing.T) {
		t.Setenv("MINTLY_TEST_LOG_NO_COLORS", "true")

		l := New(t)
		l.Error("mint creation failed", slog.Any("err", fmt.Errorf("insufficient funds")))
		l.Warn("wallet balance is low")
		l.Info("token created")
		l.Debug("polling signature status")
		t.Error("calling t.Error causes the test to fail")
	})

	t.Run("colors enabled", func(t *testing.T) {
		t.Setenv("MINTLY_TEST_LOG_NO_COLORS", "false")

		l := New(t)
		l.Error("mint creation failed", slog.Any("err", fmt.Errorf("insufficient funds")))
		l.Warn("wallet balance is low")
		l.Info("token created")
		l.Debug("polling signature status")
		t.Error("calling t.Error causes the test to fail")
	})
}
