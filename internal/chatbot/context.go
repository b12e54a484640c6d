package chatbot

import "slices"

// ContextManager 会话内的键值记忆，后写覆盖先写，不保留历史
type ContextManager struct {
	values map[string]string
}

func NewContextManager() *ContextManager {
	return &ContextManager{values: make(map[string]string)}
}

func (c *ContextManager) Update(key, value string) {
	c.values[key] = value
}

// Get 未设置的键 ok 为 false
func (c *ContextManager) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys 已设置的键，按字典序
func (c *ContextManager) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
