// Package postrec 是一个帖子推荐引擎（Post Recommender）。
//
// 设计要点：
// - 双路信号：行为交互（赞/读/评/关注）驱动 CF，内容相似（标签/词汇）驱动内容召回
// - Pipeline-first: 每条推荐链路都是 Node 链（召回 → 过滤 → 混合 → 截断），可插拔扩展
// - 单例缓存：CF 模型缓存由 Service 显式持有，读写锁保护，整组原子替换
// - Labels-first: 结果携带来源标签，支持 explain / 观测 / 表达式过滤
package postrec

import "github.com/rushteam/postrec/pipeline"

// 轻量 facade：便于用户直接 import "postrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindBlend  = pipeline.KindBlend
	KindReRank = pipeline.KindReRank
)
