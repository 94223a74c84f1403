// Package carousel implements the timed promotional banner rotation.
package carousel

import (
	"context"
	"time"
)

// DefaultInterval is the time each banner stays on screen.
const DefaultInterval = 3 * time.Second

// DefaultImages are the promotional banners shown on the home screen.
var DefaultImages = []string{
	"/assets/Banner.png",
	"/assets/banner4.png",
	"/assets/Banner5.png",
}

// Carousel rotates through a fixed list of images.
type Carousel struct {
	images []string
	index  int
}

// New creates a Carousel showing the first image.
func New(images []string) *Carousel {
	return &Carousel{images: images}
}

// Advance moves to the next image, wrapping to the first after the last.
func (c *Carousel) Advance() int {
	if len(c.images) == 0 {
		return 0
	}
	c.index = (c.index + 1) % len(c.images)
	return c.index
}

// Index is the position of the displayed image.
func (c *Carousel) Index() int {
	return c.index
}

// Current returns the displayed image, or "" when there are none.
func (c *Carousel) Current() string {
	if len(c.images) == 0 {
		return ""
	}
	return c.images[c.index]
}

// Len returns the number of images.
func (c *Carousel) Len() int {
	return len(c.images)
}

// Run advances on every tick until ctx is done or ticks is closed. onChange,
// if set, receives the new index after each advance.
func (c *Carousel) Run(ctx context.Context, ticks <-chan time.Time, onChange func(int)) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			idx := c.Advance()
			if onChange != nil {
				onChange(idx)
			}
		}
	}
}
