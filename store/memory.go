// Package store 提供数据访问契约的内置实现：内存版与 Redis 版。
// 外围应用也可以绕开它们，直接在自己的持久层上实现 core.Store。
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/postrec/core"
)

// MemoryStore 是内存实现的 core.Store，用于测试/开发/原型。
//
// 写方法模拟外围应用的数据层：每次信号增删提交后同步触发 OnChange
// 钩子（若已设置），对应推荐核心的失效入口。钩子在锁外触发，
// 钩子内部回读 store 不会死锁。
type MemoryStore struct {
	mu sync.RWMutex

	posts map[int64]*core.Post
	tags  map[string]core.Tag

	likes    map[int64]map[int64]struct{} // user → posts
	reads    []core.Read
	comments []core.Comment
	follows  map[int64]map[int64]struct{} // user → authors

	onChange func()
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:   make(map[int64]*core.Post),
		tags:    make(map[string]core.Tag),
		likes:   make(map[int64]map[int64]struct{}),
		follows: make(map[int64]map[int64]struct{}),
	}
}

// SetOnChange 注册信号变更钩子，通常接 Service.OnInteractionChanged。
func (m *MemoryStore) SetOnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *MemoryStore) fireChange() {
	m.mu.RLock()
	fn := m.onChange
	m.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// AddTag 登记一个标签。
func (m *MemoryStore) AddTag(t core.Tag) {
	m.mu.Lock()
	m.tags[t.Slug] = t
	m.mu.Unlock()
}

// AddPost 登记一篇帖子，其标签自动并入标签目录。
func (m *MemoryStore) AddPost(p *core.Post) {
	m.mu.Lock()
	m.posts[p.ID] = p
	for _, t := range p.Tags {
		if _, ok := m.tags[t.Slug]; !ok {
			m.tags[t.Slug] = t
		}
	}
	m.mu.Unlock()
}

// AddLike 记录点赞。(user, post) 唯一：重复点赞不产生新信号也不触发钩子。
func (m *MemoryStore) AddLike(userID, postID int64) bool {
	m.mu.Lock()
	row, ok := m.likes[userID]
	if !ok {
		row = make(map[int64]struct{})
		m.likes[userID] = row
	}
	if _, dup := row[postID]; dup {
		m.mu.Unlock()
		return false
	}
	row[postID] = struct{}{}
	m.mu.Unlock()
	m.fireChange()
	return true
}

// RemoveLike 取消点赞。
func (m *MemoryStore) RemoveLike(userID, postID int64) bool {
	m.mu.Lock()
	row, ok := m.likes[userID]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if _, exists := row[postID]; !exists {
		m.mu.Unlock()
		return false
	}
	delete(row, postID)
	m.mu.Unlock()
	m.fireChange()
	return true
}

// AddRead 记录一次阅读。每次调用都是一条独立记录。
func (m *MemoryStore) AddRead(userID, postID int64, seconds int) {
	m.mu.Lock()
	m.reads = append(m.reads, core.Read{UserID: userID, PostID: postID, Seconds: seconds})
	m.mu.Unlock()
	m.fireChange()
}

// AddComment 记录一条评论。
func (m *MemoryStore) AddComment(userID, postID int64) {
	m.mu.Lock()
	m.comments = append(m.comments, core.Comment{UserID: userID, PostID: postID})
	m.mu.Unlock()
	m.fireChange()
}

// AddFollow 记录关注。(user, author) 唯一。
func (m *MemoryStore) AddFollow(userID, authorID int64) bool {
	m.mu.Lock()
	row, ok := m.follows[userID]
	if !ok {
		row = make(map[int64]struct{})
		m.follows[userID] = row
	}
	if _, dup := row[authorID]; dup {
		m.mu.Unlock()
		return false
	}
	row[authorID] = struct{}{}
	m.mu.Unlock()
	m.fireChange()
	return true
}

// RemoveFollow 取消关注。
func (m *MemoryStore) RemoveFollow(userID, authorID int64) bool {
	m.mu.Lock()
	row, ok := m.follows[userID]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if _, exists := row[authorID]; !exists {
		m.mu.Unlock()
		return false
	}
	delete(row, authorID)
	m.mu.Unlock()
	m.fireChange()
	return true
}

// --- core.ContentStore ---

func (m *MemoryStore) GetCatalog(ctx context.Context) ([]*core.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*core.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) GetTagCatalog(ctx context.Context) ([]core.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Tag, 0, len(m.tags))
	for _, t := range m.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryStore) GetPostsByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []int64
	for _, p := range m.posts {
		if p.AuthorID == authorID {
			out = append(out, p.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// --- core.SignalStore ---

func (m *MemoryStore) GetUserLikes(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]struct{}, len(m.likes[userID]))
	for p := range m.likes[userID] {
		out[p] = struct{}{}
	}
	return out, nil
}

func (m *MemoryStore) GetUserReads(ctx context.Context, userID int64, minSeconds int) (map[int64]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]struct{})
	for _, r := range m.reads {
		if r.UserID != userID || r.Seconds < minSeconds {
			continue
		}
		if _, liked := m.likes[userID][r.PostID]; liked {
			continue
		}
		out[r.PostID] = struct{}{}
	}
	return out, nil
}

func (m *MemoryStore) GetAllLikes(ctx context.Context) ([]core.Like, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Like
	for u, row := range m.likes {
		for p := range row {
			out = append(out, core.Like{UserID: u, PostID: p})
		}
	}
	return out, nil
}

func (m *MemoryStore) GetAllReads(ctx context.Context, minSeconds int) ([]core.Read, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// 同一 (user, post) 只返回一条：取达标记录中的最长时长
	best := make(map[[2]int64]int)
	for _, r := range m.reads {
		if r.Seconds < minSeconds {
			continue
		}
		key := [2]int64{r.UserID, r.PostID}
		if r.Seconds > best[key] {
			best[key] = r.Seconds
		}
	}
	out := make([]core.Read, 0, len(best))
	for key, sec := range best {
		out = append(out, core.Read{UserID: key[0], PostID: key[1], Seconds: sec})
	}
	return out, nil
}

func (m *MemoryStore) GetAllComments(ctx context.Context) ([]core.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Comment, len(m.comments))
	copy(out, m.comments)
	return out, nil
}

func (m *MemoryStore) GetAllFollows(ctx context.Context) ([]core.Follow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Follow
	for u, row := range m.follows {
		for a := range row {
			out = append(out, core.Follow{UserID: u, AuthorID: a})
		}
	}
	return out, nil
}

var _ core.Store = (*MemoryStore)(nil)
