package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"cardsync/internal/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		ServiceName:             "flashcard-service",
		InstanceID:              "test-instance",
		HTTPPort:                "127.0.0.1:0",
		Transport:               config.TransportMemory,
		FlashcardTopic:          "flashcard",
		PublishTimeout:          time.Second,
		LoopbackBackend:         config.LoopbackMemory,
		LoopbackTTL:             time.Minute,
		LoopbackSweepInterval:   10 * time.Millisecond,
		FlashcardServiceURL:     "http://127.0.0.1:1",
		BreakerFailureThreshold: 5,
		BreakerCooldown:         time.Second,
		BreakerCallTimeout:      100 * time.Millisecond,
		LogLevel:                "debug",
		LogFormat:               "text",
	}
}

func runUntilCancelled(t *testing.T, run func(context.Context) error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancellation")
	}
}

func TestFlashcardServiceRunsAndStops(t *testing.T) {
	app, err := buildFlashcardService(context.Background(), testConfig(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.NotNil(t, app.janitor)
	defer app.Close()

	runUntilCancelled(t, app.Run)
}

func TestFlashcardServiceWithRedisLoopback(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.LoopbackBackend = config.LoopbackRedis
	cfg.RedisAddr = mr.Addr()

	app, err := buildFlashcardService(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Nil(t, app.janitor)
	require.NoError(t, app.Close())
}

func TestFlashcardServiceFailsWithoutRedis(t *testing.T) {
	cfg := testConfig()
	cfg.LoopbackBackend = config.LoopbackRedis
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := buildFlashcardService(context.Background(), cfg, slog.New(slog.DiscardHandler))
	assert.ErrorContains(t, err, "ping redis")
}

func TestQuizServiceRunsAndStops(t *testing.T) {
	cfg := testConfig()
	cfg.ServiceName = "quiz-service"

	app, err := buildQuizService(context.Background(), cfg, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer app.Close()

	statuses := app.guarded.GuardStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "closed", statuses[0].State)

	runUntilCancelled(t, app.Run)
}

func TestNewLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"

	logger := NewLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "event", "test")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestNormalizeAddr(t *testing.T) {
	assert.Equal(t, ":8080", normalizeAddr(""))
	assert.Equal(t, ":9000", normalizeAddr("9000"))
	assert.Equal(t, ":9000", normalizeAddr(":9000"))
	assert.Equal(t, "127.0.0.1:0", normalizeAddr("127.0.0.1:0"))
}
