// Package pipeline 把推荐逻辑拆成可组合的 Node 链。
package pipeline

import (
	"context"

	"github.com/rushteam/postrec/core"
)

// Kind 用于标记 Node 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall  Kind = "recall"  // 召回阶段：生成候选集
	KindFilter  Kind = "filter"  // 过滤阶段：剔除不符合约束的候选
	KindBlend   Kind = "blend"   // 混合阶段：多路召回按目标比例交织
	KindReRank  Kind = "rerank"  // 重排阶段：在结果上做截断/调序
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态：召回节点忽略输入生成候选，
// 过滤/重排节点在输入上变换。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}

// Pipeline 顺序执行 Node 链；任一节点出错即中断并上抛。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
