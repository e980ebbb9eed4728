// Package blend 把多路召回按目标比例交织成一个结果列表。
package blend

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/pipeline"
	"github.com/rushteam/postrec/pkg/utils"
	"github.com/rushteam/postrec/pkg/vecmath"
	"github.com/rushteam/postrec/recall"
)

// Hybrid 是混合推荐节点：内容召回与 CF 召回各出一份全目录排序，
// 按目标内容占比 alpha 交织。
//
// 交织规则：
//   - 每步看前瞻内容占比：若把下一个名额也计入，内容侧的份额
//     content/(picked+1)；未取任何结果时为 0
//   - 占比低于 alpha 且内容队列非空 → 取内容；CF 队列耗尽时也取内容
//   - 否则取 CF
//   - 由此 alpha=1.0 严格退化为纯内容序，alpha=0.0 退化为纯 CF 序
//   - 两个队列都可能给出同一帖子：后到的一侧跳过（不重排队）
//   - 凑满 TopN 或两队列耗尽为止
//
// 分数：hybrid_score = α·content_norm + (1−α)·cf_norm，
// 两侧各自做 min-max 归一化（空表不贡献，全相等归一为 1.0）。
// 结果顺序就是交织的出队顺序，不按 hybrid_score 重排 ——
// 交织顺序本身就是契约，目标配比在列表形态上可见。
type Hybrid struct {
	Content recall.Source
	CF      recall.Source
	Config  core.RecommendConfig
}

func (n *Hybrid) Name() string        { return "blend.hybrid" }
func (n *Hybrid) Kind() pipeline.Kind { return pipeline.KindBlend }

func (n *Hybrid) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	alpha := n.Config.Alpha
	if rctx.Alpha != nil && *rctx.Alpha >= 0 && *rctx.Alpha <= 1 {
		alpha = *rctx.Alpha
	}
	topN := rctx.TopN
	if topN <= 0 {
		topN = n.Config.DefaultTopN
	}

	// 两路打分互不依赖，并发执行
	var contentQueue, cfQueue []*core.Item
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		items, err := n.Content.RankAll(egCtx, rctx)
		contentQueue = items
		return err
	})
	eg.Go(func() error {
		items, err := n.CF.RankAll(egCtx, rctx)
		cfQueue = items
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	contentNorm := vecmath.MinMax(scoreMap(contentQueue))
	cfNorm := vecmath.MinMax(scoreMap(cfQueue))

	out := make([]*core.Item, 0, topN)
	emitted := make(map[int64]struct{}, topN)
	contentPicked, cfPicked := 0, 0
	ci, fi := 0, 0

	emit := func(id int64, source string) {
		it := core.NewItem(id)
		it.Score = alpha*contentNorm[id] + (1-alpha)*cfNorm[id] // 缺席一侧按 0 计
		it.PutLabel("blend_source", utils.Label{Value: source, Source: "blend"})
		it.PutLabel("blend_alpha", utils.Label{
			Value:  strconv.FormatFloat(alpha, 'f', -1, 64),
			Source: "blend",
		})
		out = append(out, it)
		emitted[id] = struct{}{}
	}

	for len(out) < topN && (ci < len(contentQueue) || fi < len(cfQueue)) {
		picked := contentPicked + cfPicked
		fraction := float64(contentPicked) / float64(picked+1)

		takeContent := ci < len(contentQueue) && (fraction < alpha || fi >= len(cfQueue))
		if takeContent {
			id := contentQueue[ci].ID
			ci++
			if _, dup := emitted[id]; dup {
				continue // 另一队列已先给出，跳过而不重排队
			}
			emit(id, "content")
			contentPicked++
		} else {
			id := cfQueue[fi].ID
			fi++
			if _, dup := emitted[id]; dup {
				continue
			}
			emit(id, "cf")
			cfPicked++
		}
	}
	return out, nil
}

func scoreMap(items []*core.Item) map[int64]float64 {
	m := make(map[int64]float64, len(items))
	for _, it := range items {
		m[it.ID] = it.Score
	}
	return m
}
