package goroutine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

func TestSafeGo_RecoversPanic(t *testing.T) {
	done := SafeGo(logger.NewNop(), "panicky", func() {
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not finish")
	}
}

func TestSafeGo_RunsFn(t *testing.T) {
	ran := false
	<-SafeGo(logger.NewNop(), "worker", func() { ran = true })
	assert.True(t, ran)
}
