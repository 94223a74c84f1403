package carousel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCarousel_AdvanceWraps(t *testing.T) {
	c := New(DefaultImages)

	assert.Equal(t, 1, c.Advance())
	assert.Equal(t, 2, c.Advance())
	assert.Equal(t, 0, c.Advance())
	assert.Equal(t, DefaultImages[0], c.Current())
}

func TestCarousel_Empty(t *testing.T) {
	c := New(nil)

	assert.Equal(t, 0, c.Advance())
	assert.Empty(t, c.Current())
}

func TestCarousel_RunStopsOnCancel(t *testing.T) {
	c := New(DefaultImages)
	ticks := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())

	var seen []int
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx, ticks, func(i int) { seen = append(seen, i) })
	}()

	for range 3 {
		ticks <- time.Time{}
	}
	cancel()
	<-done

	assert.Equal(t, []int{1, 2, 0}, seen)
	assert.Equal(t, 0, c.Index())
}

func TestCarousel_RunStopsOnClosedTicks(t *testing.T) {
	c := New(DefaultImages)
	ticks := make(chan time.Time, 1)
	ticks <- time.Time{}
	close(ticks)

	c.Run(context.Background(), ticks, nil)
	assert.Equal(t, 1, c.Index())
}
