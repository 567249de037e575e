package logging

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// WriterOutput writes formatted entries to an io.Writer, one per line.
type WriterOutput struct {
	mu sync.Mutex
	w  *bufio.Writer
	c  io.Closer
}

// NewWriterOutput wraps w. If w is also an io.Closer, Close closes it.
func NewWriterOutput(w io.Writer) *WriterOutput {
	out := &WriterOutput{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		out.c = c
	}
	return out
}

// NewConsoleOutput writes to standard error.
func NewConsoleOutput() *WriterOutput {
	return &WriterOutput{w: bufio.NewWriter(os.Stderr)}
}

// NewFileOutput appends to the named file, creating it if needed.
func NewFileOutput(path string) (*WriterOutput, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &WriterOutput{w: bufio.NewWriter(f), c: f}, nil
}

func (o *WriterOutput) Write(e Entry) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.w.WriteString(e.Format()); err != nil {
		return err
	}
	return o.w.WriteByte('\n')
}

func (o *WriterOutput) Sync() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Flush()
}

func (o *WriterOutput) Close() error {
	if err := o.Sync(); err != nil {
		return err
	}
	if o.c != nil {
		return o.c.Close()
	}
	return nil
}
