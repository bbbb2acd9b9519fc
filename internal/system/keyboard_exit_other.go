//go:build !linux

package system

import "context"

const (
	KeyEsc uint16 = 1
	KeyQ   uint16 = 16
	KeyF4  uint16 = 62
)

// StartExitOnKey is a no-op outside linux; there is no evdev to watch.
func StartExitOnKey(ctx context.Context, logger logger, keys []uint16, onExit func()) {
	if logger != nil {
		logger.Infof("input", "exit keys unsupported on this platform")
	}
}

func StartExitOnF4(ctx context.Context, logger logger, onExit func()) {
	StartExitOnKey(ctx, logger, []uint16{KeyF4, KeyEsc}, onExit)
}
