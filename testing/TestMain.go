// Package testing switches the process into test mode when imported for
// side effects from a _test.go file.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

var testDefaults = map[string]string{
	"RETAILPULSE_TEST_MODE": "1",
	"SESSION_SECRET":        "test-session-secret",
	"CSRF_SECRET":           "test-csrf-secret",
}

func ensureTestMode() {
	once.Do(func() {
		for key, value := range testDefaults {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain is available to packages that alias it into their own TestMain.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
