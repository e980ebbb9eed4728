package cf

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/postrec/core"
)

// ModelCache 是进程级唯一的 CF 模型缓存。
//
// 生命周期：启动时为空；由显式 Train 或信号变更触发的训练填充；
// 每次训练整组替换 (matrix, model, 索引)，从不原地修改 ——
// 三者只有成套替换才能保证索引永远指向训练它们的那份矩阵。
//
// 并发契约：
//   - cur 由读写锁保护：并发读并行，替换拿写锁
//   - 训练计算本身不持有读写锁，只在最后换入时短暂独占
//   - trainMu 串行化训练：后到的读者最多等一次在途训练，不会排队等历史训练
type ModelCache struct {
	Builder MatrixBuilder
	Store   core.Store
	Config  core.RecommendConfig

	mu  sync.RWMutex
	cur *cached

	trainMu sync.Mutex
}

// cached 是一次训练的成套产物，整体换入换出。
type cached struct {
	matrix *Matrix
	model  *Model
}

// NewModelCache 创建空缓存。
func NewModelCache(store core.Store, cfg core.RecommendConfig) *ModelCache {
	return &ModelCache{
		Builder: MatrixBuilder{Store: store, Config: cfg},
		Store:   store,
		Config:  cfg,
	}
}

// Train 重建交互矩阵并训练模型，成功后原子换入。
//
// 矩阵没有行或列（空语料）时跳过训练，缓存保持原状（可能仍为空）——
// 这不是错误，CF 侧查询照常返回空。
func (c *ModelCache) Train(ctx context.Context) error {
	c.trainMu.Lock()
	defer c.trainMu.Unlock()

	matrix, err := c.Builder.Build(ctx)
	if err != nil {
		return err
	}
	if matrix.Empty() {
		return nil
	}

	// CPU 密集的训练在锁外完成，换入才需要独占
	model := TrainALS(matrix, c.Config.Factors, c.Config.Reg, c.Config.Iterations, c.Config.Seed)

	c.mu.Lock()
	c.cur = &cached{matrix: matrix, model: model}
	c.mu.Unlock()
	return nil
}

// OnInteractionChanged 是失效入口：外围应用在任何 Like/Read/Comment/Follow
// 记录创建或删除后同步调用它。下一次读必须反映最新交互状态，
// 所以这里立即同步重训，而不是打脏标记等查询时再说。
func (c *ModelCache) OnInteractionChanged(ctx context.Context) error {
	return c.Train(ctx)
}

// Trained 返回缓存当前是否有模型。
func (c *ModelCache) Trained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur != nil
}

// Recommend 返回用户的 CF TopN（降序，分数并列按帖子 ID 升序）。
// topN <= 0 表示不截断。已点赞的帖子被剔除。
//
// 缓存为空时先惰性训练一次；训练后仍无模型、或用户不在矩阵里，
// 返回空列表（CF 冷启动，不是错误）。
func (c *ModelCache) Recommend(ctx context.Context, userID int64, topN int) ([]*core.Item, error) {
	if !c.Trained() {
		if err := c.Train(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	cur := c.cur
	c.mu.RUnlock()
	if cur == nil {
		return nil, nil // 空语料：没有可训练的信号
	}

	// 结构性校验：索引必须与因子矩阵同维。原子替换下不应出现，
	// 出现即 bug，按内部错误上抛而不是静默返回空。
	users, _ := cur.model.UserFactors.Dims()
	posts, _ := cur.model.PostFactors.Dims()
	if users != cur.matrix.NumUsers() || posts != cur.matrix.NumPosts() {
		return nil, core.NewDomainError(core.ModuleCF, core.ErrorCodeInconsistent,
			"cf: cached index maps do not match factor dimensions")
	}

	userRow, ok := cur.matrix.UserIndex[userID]
	if !ok {
		return nil, nil // 用户无信号：CF 冷启动
	}

	liked, err := c.Store.GetUserLikes(ctx, userID)
	if err != nil {
		return nil, core.UpstreamError(err)
	}

	type scored struct {
		postID int64
		score  float64
	}
	candidates := make([]scored, 0, cur.matrix.NumPosts())
	for col, postID := range cur.matrix.Posts {
		if _, ok := liked[postID]; ok {
			continue
		}
		candidates = append(candidates, scored{postID: postID, score: cur.model.Score(userRow, col)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].postID < candidates[j].postID
	})
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, s := range candidates {
		it := core.NewItem(s.postID)
		it.Score = s.score
		out = append(out, it)
	}
	return out, nil
}
