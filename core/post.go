package core

import "time"

// Tag 是帖子标签。Slug 是稳定标识，目录按 Slug 排序建立索引。
type Tag struct {
	Slug string
	Name string
}

// Post 是被推荐的内容实体。推荐链路只读它，分数不回写。
type Post struct {
	ID        int64
	Title     string
	Content   string // 可含 HTML，向量化前剥离
	AuthorID  int64
	Tags      []Tag
	CreatedAt time.Time
	Views     int64
}

// Text 返回用于文本向量化的原始文本（标题 + 正文）。
func (p *Post) Text() string {
	return p.Title + " " + p.Content
}
