package system

import (
	"image"
	"sync"
)

// imagePool reuses *image.NRGBA buffers per size, keyed by bounds. Preview
// rendering in a watch loop would otherwise allocate a full frame per
// change event.
type imagePool struct {
	mu    sync.RWMutex
	pools map[string]*sync.Pool
}

var globalImages = &imagePool{pools: make(map[string]*sync.Pool)}

// GetImage returns a pooled *image.NRGBA covering rect, allocating one when
// the pool is empty. Contents are whatever the previous user left behind.
func GetImage(rect image.Rectangle) *image.NRGBA {
	return globalImages.get(rect)
}

// PutImage returns an image to the pool for reuse.
func PutImage(img *image.NRGBA) {
	if img != nil {
		globalImages.put(img)
	}
}

func (p *imagePool) get(rect image.Rectangle) *image.NRGBA {
	key := rect.String()
	p.mu.RLock()
	pool, ok := p.pools[key]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		pool, ok = p.pools[key]
		if !ok {
			pool = &sync.Pool{
				New: func() any { return image.NewNRGBA(rect) },
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}
	return pool.Get().(*image.NRGBA)
}

func (p *imagePool) put(img *image.NRGBA) {
	key := img.Bounds().String()
	p.mu.RLock()
	pool, ok := p.pools[key]
	p.mu.RUnlock()
	if ok {
		pool.Put(img)
	}
}
