// Package service 组装推荐链路并暴露查询入口。
package service

import (
	"context"

	"github.com/rushteam/postrec/blend"
	"github.com/rushteam/postrec/cf"
	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/pipeline"
	"github.com/rushteam/postrec/profile"
	"github.com/rushteam/postrec/recall"
	"github.com/rushteam/postrec/rerank"
)

// Service 是推荐核心对外的唯一门面。
//
// 三个查询入口（content / cf / hybrid）都在冷启动时返回空列表而不是报错；
// 上游数据访问失败与内部状态不一致才会作为 error 上抛。
//
// Service 拥有进程级唯一的 cf.ModelCache：按显式单例持有，
// 不依赖任何包级可变状态。外围应用在每次信号增删后
// 同步调用 OnInteractionChanged，下一次读即可反映最新交互。
type Service struct {
	store  core.Store
	config core.RecommendConfig

	cache   *cf.ModelCache
	content *recall.ContentRecall
	cfSrc   *recall.CFRecall

	// extra 是插在召回/混合与 TopN 截断之间的自定义节点（如表达式过滤）。
	extra []pipeline.Node
}

// Option 配置 Service。
type Option func(*Service)

// WithNode 在每条链路的截断前插入一个自定义节点，按添加顺序执行。
func WithNode(n pipeline.Node) Option {
	return func(s *Service) {
		if n != nil {
			s.extra = append(s.extra, n)
		}
	}
}

// New 创建推荐服务。进程内应只构造一次，在启动阶段完成。
func New(store core.Store, cfg core.RecommendConfig, opts ...Option) *Service {
	s := &Service{
		store:  store,
		config: cfg,
		cache:  cf.NewModelCache(store, cfg),
	}
	s.content = &recall.ContentRecall{
		Store:    store,
		Profiles: &profile.Builder{Store: store, Config: cfg},
		Config:   cfg,
	}
	s.cfSrc = &recall.CFRecall{Cache: s.cache, Config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache 暴露模型缓存（快照落盘 / 暖启动恢复用）。
func (s *Service) Cache() *cf.ModelCache { return s.cache }

// OnInteractionChanged 是失效入口：Like/Read/Comment/Follow 任何一条
// 记录创建或删除后，由数据层同步调用。依赖方向保持显式 ——
// 谁改了信号谁负责通知，核心不订阅任何事件总线。
func (s *Service) OnInteractionChanged(ctx context.Context) error {
	return s.cache.OnInteractionChanged(ctx)
}

// RecommendContent 返回基于内容（标签 + 文本，MMR 多样化）的 TopN。
func (s *Service) RecommendContent(ctx context.Context, userID int64, topN int) ([]*core.Item, error) {
	rctx := s.newContext(userID, topN)
	return s.run(ctx, rctx, &recall.SourceNode{Source: s.content})
}

// RecommendCF 返回协同过滤的 TopN（剔除已点赞）。
func (s *Service) RecommendCF(ctx context.Context, userID int64, topN int) ([]*core.Item, error) {
	rctx := s.newContext(userID, topN)
	return s.run(ctx, rctx, &recall.SourceNode{Source: s.cfSrc})
}

// RecommendHybrid 返回内容与 CF 按 alpha 交织的 TopN。
// alpha 超出 [0,1] 时使用配置默认值。
func (s *Service) RecommendHybrid(ctx context.Context, userID int64, topN int, alpha float64) ([]*core.Item, error) {
	rctx := s.newContext(userID, topN)
	if alpha >= 0 && alpha <= 1 {
		rctx.Alpha = &alpha
	}
	return s.run(ctx, rctx, &blend.Hybrid{
		Content: s.content,
		CF:      s.cfSrc,
		Config:  s.config,
	})
}

func (s *Service) newContext(userID int64, topN int) *core.RecommendContext {
	if topN <= 0 {
		topN = s.config.DefaultTopN
	}
	return &core.RecommendContext{UserID: userID, TopN: topN}
}

func (s *Service) run(ctx context.Context, rctx *core.RecommendContext, head pipeline.Node) ([]*core.Item, error) {
	nodes := make([]pipeline.Node, 0, len(s.extra)+2)
	nodes = append(nodes, head)
	nodes = append(nodes, s.extra...)
	nodes = append(nodes, &rerank.TopN{})

	p := &pipeline.Pipeline{Nodes: nodes}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*core.Item{}
	}
	return items, nil
}
