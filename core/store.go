package core

import "context"

// ContentStore 是内容目录的数据访问契约。
//
// 设计原则：
//   - 接口定义在领域层（core），由基础设施层（store 或外围应用）实现
//   - 推荐核心对目录严格只读
//   - 实现返回的任何错误都会被核心包装成 UNAVAILABLE 上抛
type ContentStore interface {
	// GetCatalog 返回全部帖子（含标签）。
	GetCatalog(ctx context.Context) ([]*Post, error)

	// GetTagCatalog 返回全局标签目录。
	GetTagCatalog(ctx context.Context) ([]Tag, error)

	// GetPostsByAuthor 返回某作者的全部帖子 ID（用于关注权重摊派）。
	GetPostsByAuthor(ctx context.Context, authorID int64) ([]int64, error)
}

// SignalStore 是行为信号的数据访问契约。
//
// 单用户视角（画像构建）与全量视角（交互矩阵构建）分开提供，
// 避免画像链路为了几个集合拉全表。
type SignalStore interface {
	// GetUserLikes 返回用户点过赞的帖子 ID 集合。
	GetUserLikes(ctx context.Context, userID int64) (map[int64]struct{}, error)

	// GetUserReads 返回用户有效阅读（时长 >= minSeconds）的帖子 ID 集合，
	// 不含已点赞的帖子。
	GetUserReads(ctx context.Context, userID int64, minSeconds int) (map[int64]struct{}, error)

	// GetAllLikes 返回全部点赞记录。
	GetAllLikes(ctx context.Context) ([]Like, error)

	// GetAllReads 返回全部有效阅读记录（时长 >= minSeconds），
	// 同一 (user, post) 只返回一条。
	GetAllReads(ctx context.Context, minSeconds int) ([]Read, error)

	// GetAllComments 返回全部评论记录，一条评论一项。
	GetAllComments(ctx context.Context) ([]Comment, error)

	// GetAllFollows 返回全部关注记录。
	GetAllFollows(ctx context.Context) ([]Follow, error)
}

// Store 聚合两个契约：内存/Redis 实现以及外围应用的适配层都实现它。
type Store interface {
	ContentStore
	SignalStore
}
