package cache

import "fmt"

// IdempotencyKey returns the local-cache key for a fast-path idempotency
// lookup. Scoped by app name/env so multiple environments sharing an
// instance never collide.
func (c *Cache) IdempotencyKey(clientRequestID string) string {
	return c.setKey("idem:%s", clientRequestID)
}

func (c *Cache) setKey(format string, a ...any) string {
	originKey := fmt.Sprintf(format, a...)
	return fmt.Sprintf("%s:%s:%s", c.config.App.Name, c.config.App.Env, originKey)
}
