package render

import "github.com/rook-computer/hsbposter/internal/hsb"

// Defaults used when no poster document overrides them.
var (
	Foreground = hsb.New(270, 100, 100, 100)
	Background = hsb.New(52, 100, 100, 100)

	// Logical canvas size; scaled to framebuffer.
	CanvasWidth  = 1920
	CanvasHeight = 1080

	DefaultFontSize = 48
)
