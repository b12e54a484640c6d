// Package corpus 保存一批简历记录，顺序即导入顺序。
package corpus

import "resume-chatbot-go/internal/types"

// Corpus 只追加的简历集合，不去重。
// 导入阶段由驱动导入的调用方独占写入，问答阶段只读。
type Corpus struct {
	records []types.Resume
}

// New 创建空语料
func New() *Corpus {
	return &Corpus{}
}

// FromRecords 用已有记录构造语料
func FromRecords(records ...types.Resume) *Corpus {
	c := New()
	for _, r := range records {
		c.Append(r)
	}
	return c
}

// Append 追加一条记录
func (c *Corpus) Append(r types.Resume) {
	c.records = append(c.records, r)
}

// All 按导入顺序返回所有记录的副本
func (c *Corpus) All() []types.Resume {
	if c == nil {
		return nil
	}
	out := make([]types.Resume, len(c.records))
	copy(out, c.records)
	return out
}

// Len 记录数
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}
