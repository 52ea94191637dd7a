package logging

import (
	"context"
	"runtime/debug"
)

// RecoverGoroutine logs a panic with its stack instead of letting it take
// the process down. Use as `defer logging.RecoverGoroutine(rec, "listener")`
// at the top of goroutines whose failure must stay local.
func RecoverGoroutine(rec Recorder, where string) {
	if v := recover(); v != nil {
		rec.Log(context.Background(), LevelError, "recovered panic",
			"where", where,
			"panic", v,
			"stack", string(debug.Stack()),
		)
	}
}
