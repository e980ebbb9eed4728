package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/postrec/core"
)

// RedisStore 是 Redis 实现的 core.Store，用于多进程共享同一份信号数据。
//
// 键布局（ns 为空时无前缀）：
//
//	{ns}posts                帖子 ID 集合
//	{ns}post:{id}            帖子元数据 hash（title/content/author/created/views）
//	{ns}post:{id}:tags       帖子标签 slug 集合
//	{ns}tags                 标签目录 hash：slug → name
//	{ns}author:{id}:posts    作者 → 帖子 ID 集合
//	{ns}likes                "user:post" 集合；user:{id}:likes 为单用户视角
//	{ns}reads                hash："user:post" → 最长阅读秒数
//	{ns}comments             list：每条评论一个 "user:post"
//	{ns}follows              "user:author" 集合
//
// 与 MemoryStore 一致，信号写方法在提交后同步触发 OnChange 钩子。
type RedisStore struct {
	client   *redis.Client
	ns       string
	onChange func()
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, ns: namespace}
}

// SetOnChange 注册信号变更钩子。
func (s *RedisStore) SetOnChange(fn func()) { s.onChange = fn }

func (s *RedisStore) fireChange() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *RedisStore) key(parts ...string) string {
	return s.ns + strings.Join(parts, ":")
}

func pair(a, b int64) string {
	return strconv.FormatInt(a, 10) + ":" + strconv.FormatInt(b, 10)
}

func parsePair(member string) (int64, int64, bool) {
	i := strings.IndexByte(member, ':')
	if i < 0 {
		return 0, 0, false
	}
	a, err1 := strconv.ParseInt(member[:i], 10, 64)
	b, err2 := strconv.ParseInt(member[i+1:], 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return a, b, true
}

// AddPost 写入帖子及其标签。
func (s *RedisStore) AddPost(ctx context.Context, p *core.Post) error {
	pid := strconv.FormatInt(p.ID, 10)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.key("posts"), pid)
	pipe.HSet(ctx, s.key("post", pid),
		"title", p.Title,
		"content", p.Content,
		"author", p.AuthorID,
		"created", p.CreatedAt.Unix(),
		"views", p.Views,
	)
	pipe.SAdd(ctx, s.key("author", strconv.FormatInt(p.AuthorID, 10), "posts"), pid)
	for _, t := range p.Tags {
		pipe.SAdd(ctx, s.key("post", pid, "tags"), t.Slug)
		pipe.HSetNX(ctx, s.key("tags"), t.Slug, t.Name)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// AddTag 登记标签。
func (s *RedisStore) AddTag(ctx context.Context, t core.Tag) error {
	return s.client.HSet(ctx, s.key("tags"), t.Slug, t.Name).Err()
}

// AddLike 记录点赞；重复点赞不触发钩子。
func (s *RedisStore) AddLike(ctx context.Context, userID, postID int64) (bool, error) {
	added, err := s.client.SAdd(ctx, s.key("likes"), pair(userID, postID)).Result()
	if err != nil {
		return false, err
	}
	if added == 0 {
		return false, nil
	}
	err = s.client.SAdd(ctx, s.key("user", strconv.FormatInt(userID, 10), "likes"),
		strconv.FormatInt(postID, 10)).Err()
	if err != nil {
		return false, err
	}
	s.fireChange()
	return true, nil
}

// RemoveLike 取消点赞。
func (s *RedisStore) RemoveLike(ctx context.Context, userID, postID int64) (bool, error) {
	removed, err := s.client.SRem(ctx, s.key("likes"), pair(userID, postID)).Result()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		return false, nil
	}
	err = s.client.SRem(ctx, s.key("user", strconv.FormatInt(userID, 10), "likes"),
		strconv.FormatInt(postID, 10)).Err()
	if err != nil {
		return false, err
	}
	s.fireChange()
	return true, nil
}

// AddRead 记录一次阅读，同一 (user, post) 只保留最长时长。
func (s *RedisStore) AddRead(ctx context.Context, userID, postID int64, seconds int) error {
	field := pair(userID, postID)
	cur, err := s.client.HGet(ctx, s.key("reads"), field).Int()
	if err != nil && err != redis.Nil {
		return err
	}
	if seconds > cur {
		if err := s.client.HSet(ctx, s.key("reads"), field, seconds).Err(); err != nil {
			return err
		}
	}
	s.fireChange()
	return nil
}

// AddComment 追加一条评论记录。
func (s *RedisStore) AddComment(ctx context.Context, userID, postID int64) error {
	if err := s.client.RPush(ctx, s.key("comments"), pair(userID, postID)).Err(); err != nil {
		return err
	}
	s.fireChange()
	return nil
}

// AddFollow 记录关注；重复关注不触发钩子。
func (s *RedisStore) AddFollow(ctx context.Context, userID, authorID int64) (bool, error) {
	added, err := s.client.SAdd(ctx, s.key("follows"), pair(userID, authorID)).Result()
	if err != nil {
		return false, err
	}
	if added == 0 {
		return false, nil
	}
	s.fireChange()
	return true, nil
}

// RemoveFollow 取消关注。
func (s *RedisStore) RemoveFollow(ctx context.Context, userID, authorID int64) (bool, error) {
	removed, err := s.client.SRem(ctx, s.key("follows"), pair(userID, authorID)).Result()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		return false, nil
	}
	s.fireChange()
	return true, nil
}

// --- core.ContentStore ---

func (s *RedisStore) GetCatalog(ctx context.Context) ([]*core.Post, error) {
	ids, err := s.client.SMembers(ctx, s.key("posts")).Result()
	if err != nil {
		return nil, err
	}
	tagNames, err := s.client.HGetAll(ctx, s.key("tags")).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*core.Post, 0, len(ids))
	for _, pid := range ids {
		id, err := strconv.ParseInt(pid, 10, 64)
		if err != nil {
			continue
		}
		meta, err := s.client.HGetAll(ctx, s.key("post", pid)).Result()
		if err != nil {
			return nil, err
		}
		if len(meta) == 0 {
			continue
		}
		slugs, err := s.client.SMembers(ctx, s.key("post", pid, "tags")).Result()
		if err != nil {
			return nil, err
		}
		sort.Strings(slugs)
		tags := make([]core.Tag, 0, len(slugs))
		for _, slug := range slugs {
			tags = append(tags, core.Tag{Slug: slug, Name: tagNames[slug]})
		}

		author, _ := strconv.ParseInt(meta["author"], 10, 64)
		created, _ := strconv.ParseInt(meta["created"], 10, 64)
		views, _ := strconv.ParseInt(meta["views"], 10, 64)
		out = append(out, &core.Post{
			ID:        id,
			Title:     meta["title"],
			Content:   meta["content"],
			AuthorID:  author,
			Tags:      tags,
			CreatedAt: time.Unix(created, 0),
			Views:     views,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *RedisStore) GetTagCatalog(ctx context.Context) ([]core.Tag, error) {
	all, err := s.client.HGetAll(ctx, s.key("tags")).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.Tag, 0, len(all))
	for slug, name := range all {
		out = append(out, core.Tag{Slug: slug, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *RedisStore) GetPostsByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.key("author", strconv.FormatInt(authorID, 10), "posts")).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// --- core.SignalStore ---

func (s *RedisStore) GetUserLikes(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	members, err := s.client.SMembers(ctx, s.key("user", strconv.FormatInt(userID, 10), "likes")).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[int64]struct{}, len(members))
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (s *RedisStore) GetUserReads(ctx context.Context, userID int64, minSeconds int) (map[int64]struct{}, error) {
	liked, err := s.GetUserLikes(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.client.HGetAll(ctx, s.key("reads")).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[int64]struct{})
	for field, val := range all {
		u, p, ok := parsePair(field)
		if !ok || u != userID {
			continue
		}
		sec, err := strconv.Atoi(val)
		if err != nil || sec < minSeconds {
			continue
		}
		if _, isLiked := liked[p]; isLiked {
			continue
		}
		out[p] = struct{}{}
	}
	return out, nil
}

func (s *RedisStore) GetAllLikes(ctx context.Context) ([]core.Like, error) {
	members, err := s.client.SMembers(ctx, s.key("likes")).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.Like, 0, len(members))
	for _, m := range members {
		if u, p, ok := parsePair(m); ok {
			out = append(out, core.Like{UserID: u, PostID: p})
		}
	}
	return out, nil
}

func (s *RedisStore) GetAllReads(ctx context.Context, minSeconds int) ([]core.Read, error) {
	all, err := s.client.HGetAll(ctx, s.key("reads")).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.Read, 0, len(all))
	for field, val := range all {
		u, p, ok := parsePair(field)
		if !ok {
			continue
		}
		sec, err := strconv.Atoi(val)
		if err != nil || sec < minSeconds {
			continue
		}
		out = append(out, core.Read{UserID: u, PostID: p, Seconds: sec})
	}
	return out, nil
}

func (s *RedisStore) GetAllComments(ctx context.Context) ([]core.Comment, error) {
	members, err := s.client.LRange(ctx, s.key("comments"), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.Comment, 0, len(members))
	for _, m := range members {
		if u, p, ok := parsePair(m); ok {
			out = append(out, core.Comment{UserID: u, PostID: p})
		}
	}
	return out, nil
}

func (s *RedisStore) GetAllFollows(ctx context.Context) ([]core.Follow, error) {
	members, err := s.client.SMembers(ctx, s.key("follows")).Result()
	if err != nil {
		return nil, err
	}
	out := make([]core.Follow, 0, len(members))
	for _, m := range members {
		if u, a, ok := parsePair(m); ok {
			out = append(out, core.Follow{UserID: u, AuthorID: a})
		}
	}
	return out, nil
}

var _ core.Store = (*RedisStore)(nil)
