// Package goroutine launches background goroutines that log panics instead
// of taking the process down.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// SafeGo runs fn in a new goroutine. A panic in fn is logged with its stack.
// The returned channel is closed once fn has returned or panicked.
func SafeGo(log logger.Interface, name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
	return done
}
