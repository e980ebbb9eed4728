package recall

import (
	"context"

	"github.com/rushteam/postrec/cf"
	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/pkg/utils"
)

// CFRecall 是协同过滤召回源：从进程级模型缓存读取用户的隐向量预测分。
// 训练与失效由 cf.ModelCache 负责，这里只是查询视角。
type CFRecall struct {
	Cache  *cf.ModelCache
	Config core.RecommendConfig
}

func (r *CFRecall) Name() string { return "recall.cf" }

func (r *CFRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	topN := rctx.TopN
	if topN <= 0 {
		topN = r.Config.DefaultTopN
	}
	return r.recommend(ctx, rctx.UserID, topN)
}

func (r *CFRecall) RankAll(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	return r.recommend(ctx, rctx.UserID, 0)
}

func (r *CFRecall) recommend(ctx context.Context, userID int64, topN int) ([]*core.Item, error) {
	items, err := r.Cache.Recommend(ctx, userID, topN)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		it.PutLabel("recall_source", utils.Label{Value: "cf", Source: "recall"})
	}
	return items, nil
}
