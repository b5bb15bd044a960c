package factory

import (
	"context"
	"time"

	"github.com/mcoot/lanterngame/internal/config"
	"github.com/mcoot/lanterngame/internal/dependencies/mocks"
	"github.com/mcoot/lanterngame/internal/logger"
	"github.com/mcoot/lanterngame/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates a bootstrapped App on memory storage with mocked
// dependencies and default game constants
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(config.DefaultGame())
}

// NewTestAppWithConfig is NewTestApp with explicit game constants
func NewTestAppWithConfig(gameCfg config.Game) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, gameCfg, config.Auth{}, logger.Nop())
	if err := app.RoundService.Bootstrap(context.Background()); err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
