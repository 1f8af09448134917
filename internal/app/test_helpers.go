package app

import (
	"os"
	"testing"

	"github.com/vk/animgraph/internal/assets"
	"github.com/vk/animgraph/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. The app logs
// at debug level into the returned buffer.
func SetupAppTest(t *testing.T, cfg *Config, modules ...assets.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(logBuffer, cfg, modules...)

	t.Cleanup(func() {
		if os.Getenv("ANIMGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
