package util

import "context"

// SimpleLimiter bounds the number of concurrent holders.
type SimpleLimiter chan struct{}

// Enter blocks until a slot is free or ctx is done.
func (l SimpleLimiter) Enter(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l SimpleLimiter) Leave() { <-l }

func NewSimpleLimiter(l int) SimpleLimiter {
	if l < 1 {
		l = 1
	}
	return make(chan struct{}, l)
}
