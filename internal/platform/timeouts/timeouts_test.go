package timeouts

import (
	"testing"
	"time"
)

func TestTimeoutsArePositive(t *testing.T) {
	for name, d := range map[string]time.Duration{
		"ReadHeader":        ReadHeader,
		"Shutdown":          Shutdown,
		"TelemetryShutdown": TelemetryShutdown,
	} {
		if d <= 0 {
			t.Fatalf("%s = %v, want positive", name, d)
		}
	}
}
