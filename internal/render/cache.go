package render

// Cache memoizes the last rendered frame. Every mutation of the model or the
// interaction state must call Invalidate before the next Draw.
type Cache struct {
	frame  *Frame
	digest string
	hits   uint64
	misses uint64
}

// Invalidate drops the memoized frame
func (c *Cache) Invalidate() {
	c.frame = nil
	c.digest = ""
}

// Valid reports whether a frame is memoized
func (c *Cache) Valid() bool {
	return c.frame != nil
}

// Draw returns the memoized frame or builds, digests and stores a new one.
// hit reports whether the memoized frame was used. A failed build leaves the
// cache empty.
func (c *Cache) Draw(build func() (*Frame, error)) (frame *Frame, digest string, hit bool, err error) {
	if c.frame != nil {
		c.hits++
		return c.frame, c.digest, true, nil
	}

	c.misses++
	frame, err = build()
	if err != nil {
		return nil, "", false, err
	}
	digest, err = frame.Digest()
	if err != nil {
		return nil, "", false, err
	}

	c.frame, c.digest = frame, digest
	return frame, digest, false, nil
}

// Stats returns the hit and miss counters
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}
