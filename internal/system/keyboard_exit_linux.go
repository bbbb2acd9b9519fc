//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

const evKey = 0x01

// Linux input-event-codes.h
const (
	KeyEsc uint16 = 1
	KeyQ   uint16 = 16
	KeyF4  uint16 = 62
)

// StartExitOnKey watches Linux evdev devices under /dev/input/event* and
// invokes onExit once when any of keys is pressed.
//
// It is best-effort: if no input devices are available, it logs and returns.
func StartExitOnKey(ctx context.Context, logger logger, keys []uint16, onExit func()) {
	if onExit == nil || len(keys) == 0 {
		return
	}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found for exit key")
		}
		return
	}

	var once sync.Once
	triggerExit := func(code uint16) {
		once.Do(func() {
			if logger != nil {
				logger.Infof("input", "key %d pressed: exiting", code)
			}
			onExit()
		})
	}

	for _, path := range paths {
		go watchDevice(ctx, path, tvSize, keys, triggerExit)
	}
}

// StartExitOnF4 is StartExitOnKey for F4 and Esc.
func StartExitOnF4(ctx context.Context, logger logger, onExit func()) {
	StartExitOnKey(ctx, logger, []uint16{KeyF4, KeyEsc}, onExit)
}

func watchDevice(ctx context.Context, path string, tvSize int, keys []uint16, trigger func(uint16)) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, readErr := unix.Read(fd, buf)
		if readErr != nil {
			if readErr == unix.EAGAIN || readErr == unix.EINTR {
				continue
			}
			return
		}
		if code, ok := findKeyPress(buf[:n], tvSize, keys); ok {
			trigger(code)
			// Give the app a moment to unwind; then stop reading.
			time.Sleep(50 * time.Millisecond)
			return
		}
	}
}

// findKeyPress scans a buffer of input_event records for a press (value 1)
// of one of keys.
func findKeyPress(buf []byte, tvSize int, keys []uint16) (uint16, bool) {
	eventSize := tvSize + 2 + 2 + 4
	for off := 0; off+eventSize <= len(buf); off += eventSize {
		rec := buf[off : off+eventSize]
		typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
		code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
		value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
		if typ != evKey || value != 1 {
			continue
		}
		for _, k := range keys {
			if code == k {
				return code, true
			}
		}
	}
	return 0, false
}
