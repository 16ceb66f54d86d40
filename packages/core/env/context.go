package env

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

var (
	// ErrKeyExists is returned when a context key is written a second time.
	ErrKeyExists = errors.New("context key already set")
	// ErrKeyMissing is returned when a key was never written.
	ErrKeyMissing = errors.New("context key not set")
)

// Context holds the values produced by earlier steps of one run. Every key is
// write-once.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// Set stores value under key. Overwriting an existing key is an error.
func (c *Context) Set(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return fmt.Errorf("%w: %s", ErrKeyExists, key)
	}
	c.values[key] = value
	return nil
}

// Merge sets every key of values, stopping at the first collision.
func (c *Context) Merge(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Context) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// String returns the value under key formatted as a string.
func (c *Context) String(key string) (string, error) {
	v, ok := c.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyMissing, key)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", v), nil
}

// Int returns the value under key as an int. JSON numbers decode as float64
// and are accepted when they hold a whole number.
func (c *Context) Int(key string) (int, error) {
	v, ok := c.Get(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrKeyMissing, key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("context key %s: %v is not a whole number", key, n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("context key %s: %w", key, err)
		}
		return i, nil
	}
	return 0, fmt.Errorf("context key %s: unsupported type %T", key, v)
}

// Keys returns all keys in sorted order.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the current values.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
