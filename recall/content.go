package recall

import (
	"context"
	"sort"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/pkg/utils"
	"github.com/rushteam/postrec/pkg/vecmath"
	"github.com/rushteam/postrec/profile"
)

// ContentRecall 是基于内容的召回源（标签 + 文本相似）。
//
// 算法流程：
//  1. 构建用户画像（profile.Builder），冷启动直接返回空
//  2. 每篇帖子的特征 = [L2 归一化标签向量 | TF-IDF 向量] 拼接，
//     用户向量 = [L2 归一化标签画像 | 文本画像] 按同样顺序拼接
//  3. 相关性分数 = 帖子特征与用户向量的余弦相似度
//  4. MMR 贪心选取：首选相似度最高者，之后每步最大化
//     λ·sim(post, user) − (1−λ)·max_sim(post, 已选集合)
//     纯相关性排序会退化成一簇近重复帖，MMR 用冗余度惩罚换多样性
//
// 确定性：目录按帖子 ID 升序处理，argmax 并列取更小的 ID。
type ContentRecall struct {
	Store    core.Store
	Profiles *profile.Builder
	Config   core.RecommendConfig
}

func (r *ContentRecall) Name() string { return "recall.content" }

// Recall 返回 MMR 选出的 TopN。TopN 大于目录时返回全部（按选取顺序）。
func (r *ContentRecall) Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	topN := rctx.TopN
	if topN <= 0 {
		topN = r.Config.DefaultTopN
	}
	return r.rank(ctx, rctx.UserID, topN)
}

// RankAll 对整个目录做 MMR 排序（供混合层取完整池子）。
func (r *ContentRecall) RankAll(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	return r.rank(ctx, rctx.UserID, -1)
}

func (r *ContentRecall) rank(ctx context.Context, userID int64, topN int) ([]*core.Item, error) {
	prof, err := r.Profiles.Build(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, nil // 冷启动：零候选
	}

	catalog, err := r.Store.GetCatalog(ctx)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	if len(catalog) == 0 {
		return nil, nil
	}
	posts := make([]*core.Post, len(catalog))
	copy(posts, catalog)
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })

	// 帖子特征与用户向量必须在同一空间：复用画像携带的 TagIndex / Vectorizer
	features := make([][]float64, len(posts))
	for i, p := range posts {
		tagVec := vecmath.Normalize(prof.TagIndex.PostVector(p))
		features[i] = vecmath.Concat(tagVec, prof.Vectorizer.Transform(p.Text()))
	}
	userVec := vecmath.Concat(vecmath.Normalize(prof.TagProfile), prof.TextProfile)

	sims := make([]float64, len(posts))
	for i := range posts {
		sims[i] = vecmath.Cosine(features[i], userVec)
	}

	if topN < 0 || topN > len(posts) {
		topN = len(posts)
	}
	selected := mmrSelect(features, sims, r.Config.MMRLambda, topN)

	out := make([]*core.Item, 0, len(selected))
	for _, idx := range selected {
		it := core.NewItem(posts[idx].ID)
		it.Score = sims[idx]
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// mmrSelect 执行 Maximal Marginal Relevance 贪心选取，返回选中下标（按选取顺序）。
// argmax 并列取更小下标。
func mmrSelect(features [][]float64, sims []float64, lambda float64, topN int) []int {
	n := len(features)
	if n == 0 || topN <= 0 {
		return nil
	}

	selected := make([]int, 0, topN)
	picked := make([]bool, n)

	// 首选：与用户向量相似度最高者
	first := 0
	for i := 1; i < n; i++ {
		if sims[i] > sims[first] {
			first = i
		}
	}
	selected = append(selected, first)
	picked[first] = true

	// maxRedundancy[i] 维护候选 i 与已选集合的最大相似度，增量更新
	maxRedundancy := make([]float64, n)
	for i := range maxRedundancy {
		maxRedundancy[i] = vecmath.Cosine(features[i], features[first])
	}

	for len(selected) < topN {
		best, found := -1, false
		var bestScore float64
		for i := 0; i < n; i++ {
			if picked[i] {
				continue
			}
			score := lambda*sims[i] - (1-lambda)*maxRedundancy[i]
			if !found || score > bestScore {
				best, bestScore, found = i, score, true
			}
		}
		if !found {
			break // 候选耗尽
		}
		selected = append(selected, best)
		picked[best] = true
		for i := 0; i < n; i++ {
			if picked[i] {
				continue
			}
			if s := vecmath.Cosine(features[i], features[best]); s > maxRedundancy[i] {
				maxRedundancy[i] = s
			}
		}
	}
	return selected
}
