//go:build !unix

package main

import "os"

// Best-effort fallback for non-Unix platforms.
// Note: this does not capture runtime-level stderr output (like panics)
// the way Dup2 does on Unix.
func redirectStdIO(path string) error {
	f, err := openStdioLog(path)
	if err != nil || f == nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
