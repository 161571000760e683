package upload

import (
	"io"
	"sync/atomic"
)

type Counter int64

func (c *Counter) Increment(n int64) int64 {
	return atomic.AddInt64((*int64)(c), n)
}

func (c *Counter) Get() int64 {
	return atomic.LoadInt64((*int64)(c))
}

func (c *Counter) Reset() {
	atomic.StoreInt64((*int64)(c), 0)
}

// CountingReader reports the running byte count after every read.
type CountingReader struct {
	r     io.Reader
	total int64
	count Counter
	fn    func(sent, total int64)
}

func NewCountingReader(r io.Reader, total int64, fn func(sent, total int64)) *CountingReader {
	return &CountingReader{r: r, total: total, fn: fn}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		sent := c.count.Increment(int64(n))
		if c.fn != nil {
			c.fn(sent, c.total)
		}
	}
	return n, err
}

// Sent returns the number of bytes read so far.
func (c *CountingReader) Sent() int64 {
	return c.count.Get()
}
