package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter serializes writes from prompts, tables and console logs and
// flushes buffered destinations after every write.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps destination unless it is nil or already wrapped.
func NewFlushingWriter(destination io.Writer) io.Writer {
	switch destination.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return destination
	}
	return &FlushingWriter{destination: destination}
}

// Write forwards data and flushes the destination when it supports Flush.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	if writer == nil || writer.destination == nil {
		return len(data), nil
	}

	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	written, writeError := writer.destination.Write(data)
	if writeError != nil {
		return written, writeError
	}
	if flushable, canFlush := writer.destination.(flusher); canFlush {
		return written, flushable.Flush()
	}
	return written, nil
}
