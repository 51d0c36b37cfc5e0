package mtm

import "context"

// LoadFunc loads a model described by a validated manifest.
type LoadFunc[T any] func(ctx context.Context, m *Manifest) (T, error)

// Wrap returns a function that checks the manifest at a path before calling
// fn. If the manifest is rejected, fn is not called and the *Error is
// returned.
func Wrap[T any](c *Client, fn LoadFunc[T]) func(ctx context.Context, manifestPath string) (T, error) {
	return func(ctx context.Context, manifestPath string) (T, error) {
		m, err := c.Load(ctx, manifestPath)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx, m)
	}
}
