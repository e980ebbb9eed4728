// Package rerank 提供结果序列上的末端变换节点。
package rerank

import (
	"context"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/pipeline"
)

// TopN 截断节点：保留输入序列的前 N 个。
// N 未设置时回落到 rctx.TopN；两者都 <= 0 则不截断。
// 放在链路末端，保证无论上游插入什么节点，出口条数不超过请求值。
type TopN struct {
	N int
}

func (n *TopN) Name() string        { return "rerank.topn" }
func (n *TopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopN) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 {
		limit = rctx.TopN
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
