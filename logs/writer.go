package logs

import (
	"io"
	"os"
)

type Writer io.Writer

// Writer is stderr unless VAGUE_LOG_FILE names a file to append to.
func (Module) Writer() Writer {
	path := os.Getenv("VAGUE_LOG_FILE")
	if path == "" {
		return os.Stderr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return os.Stderr
	}
	return f
}
