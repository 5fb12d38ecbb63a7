package host

import "sync"

// BufferPool recycles encoded frame buffers of one size.
type BufferPool struct {
	pool sync.Pool
	size int
}

func NewBufferPool(vertices int) *BufferPool {
	size := FrameSize(vertices)
	return &BufferPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]byte, size)
			},
		},
	}
}

func (p *BufferPool) Get() []byte {
	return p.pool.Get().([]byte)
}

func (p *BufferPool) Put(b []byte) {
	if len(b) == p.size {
		p.pool.Put(b)
	}
}
