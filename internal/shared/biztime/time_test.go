package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowUTC_TruncatesToMillis(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	restore := SetClock(func() time.Time { return fixed })
	defer restore()

	now := NowUTC()

	assert.Equal(t, time.UTC, now.Location())
	assert.Equal(t, 123000000, now.Nanosecond())
	assert.Equal(t, 9, now.Hour())
}

func TestUnixMilliRoundTrip(t *testing.T) {
	now := NowUTC()
	assert.True(t, now.Equal(FromUnixMilli(ToUnixMilli(now))))
	assert.Equal(t, int64(0), ToUnixMilli(time.Time{}))
	assert.True(t, FromUnixMilli(0).IsZero())
}
