package core

import "errors"

// Entity is a stable index into the world's component arrays.
// Valid handles are in [0, capacity) and are never recycled.
type Entity uint32

// ErrCapacityExceeded is returned when every entity slot is in use.
var ErrCapacityExceeded = errors.New("entity capacity exceeded")

// Wall identifies the domain boundary an entity collided with.
type Wall uint8

const (
	WallLeft Wall = iota
	WallRight
	WallTop
	WallBottom
)

func (w Wall) String() string {
	switch w {
	case WallLeft:
		return "left"
	case WallRight:
		return "right"
	case WallTop:
		return "top"
	case WallBottom:
		return "bottom"
	default:
		return "unknown"
	}
}
