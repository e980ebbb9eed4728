// Package recall 提供候选生成：内容召回与协同过滤召回。
package recall

import (
	"context"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/pipeline"
)

// Source 是召回源接口。
//
// 两个方法覆盖两种消费场景：
//   - Recall 面向单路出结果：返回 TopN 截断后的有序列表
//   - RankAll 面向混合：返回对整个目录的有序打分，让交织有完整的池子可取
//
// 冷启动（用户无足够信号）统一返回空列表而不是错误。
type Source interface {
	Name() string

	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)

	RankAll(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// SourceNode 把 Source 包装成 Pipeline Node，忽略输入 items。
type SourceNode struct {
	Source Source
}

func (n *SourceNode) Name() string        { return n.Source.Name() }
func (n *SourceNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *SourceNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.Source.Recall(ctx, rctx)
}
