package feature

import (
	"sort"

	"github.com/rushteam/postrec/core"
)

// TagIndex 为每个标签分配稳定的整数位置（按 slug 升序），
// 使标签归属可以表示成定长 0/1 向量并在帖子之间可比。
//
// 它是标签目录的纯函数派生物：同一份 slug 集合永远得到同一份映射，
// 不持久化，任何时刻都可以重算。
type TagIndex struct {
	index map[string]int
}

// BuildTagIndex 从标签目录构建索引。重复 slug 只占一个位置。
func BuildTagIndex(tags []core.Tag) *TagIndex {
	slugs := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t.Slug]; ok {
			continue
		}
		seen[t.Slug] = struct{}{}
		slugs = append(slugs, t.Slug)
	}
	sort.Strings(slugs)

	index := make(map[string]int, len(slugs))
	for i, s := range slugs {
		index[s] = i
	}
	return &TagIndex{index: index}
}

// Size 返回索引维度（即标签向量长度）。
func (ti *TagIndex) Size() int {
	return len(ti.index)
}

// Position 返回 slug 的位置；不存在时 ok 为 false。
func (ti *TagIndex) Position(slug string) (int, bool) {
	i, ok := ti.index[slug]
	return i, ok
}

// PostVector 返回帖子的 0/1 标签向量：帖子携带且存在于索引中的标签位置为 1。
// 已从目录删除的标签静默跳过：当作缺失，不是错误。
func (ti *TagIndex) PostVector(p *core.Post) []float64 {
	vec := make([]float64, len(ti.index))
	for _, t := range p.Tags {
		if i, ok := ti.index[t.Slug]; ok {
			vec[i] = 1
		}
	}
	return vec
}
