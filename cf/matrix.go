// Package cf 实现隐式反馈协同过滤：交互矩阵聚合、ALS 训练、进程级模型缓存。
package cf

import (
	"context"
	"sort"

	"github.com/rushteam/postrec/core"
)

// Matrix 是稀疏的用户×帖子加权交互矩阵。
//
// 只收录参与者：至少有一条有效信号的用户、至少出现在一个信号里的帖子。
// 零信号的用户/帖子不以零行零列的形式存在。
// Users / Posts 按 ID 升序，保证同一份信号永远得到同一份索引。
type Matrix struct {
	Rows []map[int]float64 // 行号（用户）→ {列号（帖子）→ 累计权重}

	Users []int64 // 行号 → 用户 ID
	Posts []int64 // 列号 → 帖子 ID

	UserIndex map[int64]int
	PostIndex map[int64]int
}

// NumUsers 返回矩阵行数。
func (m *Matrix) NumUsers() int { return len(m.Users) }

// NumPosts 返回矩阵列数。
func (m *Matrix) NumPosts() int { return len(m.Posts) }

// Empty 表示矩阵没有可训练的行或列。
func (m *Matrix) Empty() bool { return m == nil || len(m.Users) == 0 || len(m.Posts) == 0 }

// MatrixBuilder 把全量行为信号聚合成交互矩阵。
//
// 权重：Like 1.0、有效 Read 0.5、Comment 0.8、Follow 0.3（摊到作者每篇帖子）。
// 同一 (user, post) 的多类信号权重相加；
// 同一 (user, post) 的多条评论按 CommentOncePerPost 决定逐条累加还是只记一次。
type MatrixBuilder struct {
	Store  core.Store
	Config core.RecommendConfig
}

// Build 构建矩阵。没有任何信号时返回空矩阵（不是错误）。
func (b *MatrixBuilder) Build(ctx context.Context) (*Matrix, error) {
	cells := make(map[int64]map[int64]float64) // user → post → weight
	add := func(user, post int64, w float64) {
		row, ok := cells[user]
		if !ok {
			row = make(map[int64]float64)
			cells[user] = row
		}
		row[post] += w
	}

	likes, err := b.Store.GetAllLikes(ctx)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	for _, l := range likes {
		add(l.UserID, l.PostID, b.Config.LikeWeight)
	}

	reads, err := b.Store.GetAllReads(ctx, b.Config.ReadThresholdSeconds)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	for _, r := range reads {
		add(r.UserID, r.PostID, b.Config.ReadWeight)
	}

	comments, err := b.Store.GetAllComments(ctx)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	if b.Config.CommentOncePerPost {
		seen := make(map[[2]int64]struct{}, len(comments))
		for _, c := range comments {
			key := [2]int64{c.UserID, c.PostID}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			add(c.UserID, c.PostID, b.Config.CommentWeight)
		}
	} else {
		for _, c := range comments {
			add(c.UserID, c.PostID, b.Config.CommentWeight)
		}
	}

	follows, err := b.Store.GetAllFollows(ctx)
	if err != nil {
		return nil, core.UpstreamError(err)
	}
	for _, f := range follows {
		// 关注摊派：作者每篇帖子各得一格权重，而不是聚合成一格
		postIDs, err := b.Store.GetPostsByAuthor(ctx, f.AuthorID)
		if err != nil {
			return nil, core.UpstreamError(err)
		}
		for _, pid := range postIDs {
			add(f.UserID, pid, b.Config.FollowWeight)
		}
	}

	return buildIndex(cells), nil
}

func buildIndex(cells map[int64]map[int64]float64) *Matrix {
	users := make([]int64, 0, len(cells))
	postSet := make(map[int64]struct{})
	for u, row := range cells {
		users = append(users, u)
		for p := range row {
			postSet[p] = struct{}{}
		}
	}
	posts := make([]int64, 0, len(postSet))
	for p := range postSet {
		posts = append(posts, p)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	sort.Slice(posts, func(i, j int) bool { return posts[i] < posts[j] })

	m := &Matrix{
		Rows:      make([]map[int]float64, len(users)),
		Users:     users,
		Posts:     posts,
		UserIndex: make(map[int64]int, len(users)),
		PostIndex: make(map[int64]int, len(posts)),
	}
	for i, u := range users {
		m.UserIndex[u] = i
	}
	for j, p := range posts {
		m.PostIndex[p] = j
	}
	for i, u := range users {
		row := make(map[int]float64, len(cells[u]))
		for p, w := range cells[u] {
			row[m.PostIndex[p]] = w
		}
		m.Rows[i] = row
	}
	return m
}

// transpose 返回列视角（帖子 → {用户 → 权重}），供 ALS 的物品侧更新使用。
func (m *Matrix) transpose() []map[int]float64 {
	cols := make([]map[int]float64, len(m.Posts))
	for j := range cols {
		cols[j] = make(map[int]float64)
	}
	for i, row := range m.Rows {
		for j, w := range row {
			cols[j][i] = w
		}
	}
	return cols
}
