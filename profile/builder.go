// Package profile 从用户的行为历史构建口味画像。
package profile

import (
	"context"
	"sort"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/feature"
	"github.com/rushteam/postrec/pkg/vecmath"
)

// UserProfile 是一次请求内临时派生的用户口味画像。
//
// 四个字段构成一个不可拆分的整体：两个画像向量只有在生成它们的
// TagIndex / TextVectorizer 所定义的空间里才有意义，打分方必须
// 原样接过这四件套，绝不能自己重新 Fit。
type UserProfile struct {
	// TagProfile 是标签画像：各帖子 0/1 标签向量的加权均值。
	// 此阶段不做归一化，打分时再归一。
	TagProfile []float64

	// TextProfile 是文本画像：各帖子 TF-IDF 向量的加权均值，已 L2 归一化
	// （范数为零时保持零向量）。
	TextProfile []float64

	TagIndex   *feature.TagIndex
	Vectorizer *feature.TextVectorizer
}

// Builder 构建用户画像。无共享状态，可跨请求并发使用；
// 内部的 TextVectorizer 按画像新建，绝不跨用户复用。
type Builder struct {
	Store  core.Store
	Config core.RecommendConfig
}

// Build 为用户构建画像。
//
// 算法：
//  1. 取点赞帖（权重 LikeWeight）与有效阅读帖（权重 ReadWeight，剔除已点赞）
//  2. 合集为空 → 冷启动，返回 (nil, nil)：调用方按零候选处理，不是错误
//  3. 标签画像 = 标签向量加权均值
//  4. 在恰好这批帖子的文本上 Fit TF-IDF；文本画像 = 加权均值后 L2 归一化
func (b *Builder) Build(ctx context.Context, userID int64) (*UserProfile, error) {
	likes, err := b.Store.GetUserLikes(ctx, userID)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	reads, err := b.Store.GetUserReads(ctx, userID, b.Config.ReadThresholdSeconds)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	if len(likes)+len(reads) == 0 {
		return nil, nil // 冷启动
	}

	catalog, err := b.Store.GetCatalog(ctx)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	tagCatalog, err := b.Store.GetTagCatalog(ctx)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	tagIndex := feature.BuildTagIndex(tagCatalog)

	// 参与画像的帖子：先点赞后阅读，各组内按 ID 升序，保证确定性
	type weighted struct {
		post   *core.Post
		weight float64
	}
	byID := make(map[int64]*core.Post, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}
	collect := func(ids map[int64]struct{}, w float64) []weighted {
		out := make([]weighted, 0, len(ids))
		for id := range ids {
			if p, ok := byID[id]; ok {
				out = append(out, weighted{post: p, weight: w})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].post.ID < out[j].post.ID })
		return out
	}
	posts := collect(likes, b.Config.LikeWeight)
	for _, r := range collect(reads, b.Config.ReadWeight) {
		if _, liked := likes[r.post.ID]; liked {
			continue // 已点赞的阅读不重复计入画像
		}
		posts = append(posts, r)
	}
	if len(posts) == 0 {
		// 信号指向的帖子已全部下线，同样视为冷启动
		return nil, nil
	}

	// 标签画像：加权均值
	tagProfile := make([]float64, tagIndex.Size())
	var weightSum float64
	for _, wp := range posts {
		vec := tagIndex.PostVector(wp.post)
		for i := range vec {
			tagProfile[i] += vec[i] * wp.weight
		}
		weightSum += wp.weight
	}
	for i := range tagProfile {
		tagProfile[i] /= weightSum
	}

	// 文本画像：只在画像帖子集上 Fit，避免无关文本稀释词表
	docs := make([]string, len(posts))
	for i, wp := range posts {
		docs[i] = wp.post.Text()
	}
	vectorizer := feature.NewTextVectorizer(b.Config.VocabSize)
	vectorizer.Fit(docs)

	textProfile := make([]float64, vectorizer.Dim())
	for _, wp := range posts {
		vec := vectorizer.Transform(wp.post.Text())
		for i := range vec {
			textProfile[i] += vec[i] * wp.weight
		}
	}
	for i := range textProfile {
		textProfile[i] /= weightSum
	}
	textProfile = vecmath.Normalize(textProfile)

	return &UserProfile{
		TagProfile:  tagProfile,
		TextProfile: textProfile,
		TagIndex:    tagIndex,
		Vectorizer:  vectorizer,
	}, nil
}
