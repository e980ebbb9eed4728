package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/filter"
	"github.com/rushteam/postrec/store"
)

func newServiceFixture(t *testing.T, opts ...Option) (*store.MemoryStore, *Service) {
	t.Helper()
	goTag := core.Tag{Slug: "go", Name: "Go"}
	rustTag := core.Tag{Slug: "rust", Name: "Rust"}
	dbTag := core.Tag{Slug: "database", Name: "Database"}

	ms := store.NewMemoryStore()
	ms.AddPost(&core.Post{ID: 1, AuthorID: 7, Tags: []core.Tag{goTag}})
	ms.AddPost(&core.Post{ID: 2, AuthorID: 7, Tags: []core.Tag{rustTag}})
	ms.AddPost(&core.Post{ID: 3, AuthorID: 8, Tags: []core.Tag{goTag, rustTag}})
	ms.AddPost(&core.Post{ID: 4, AuthorID: 8, Tags: []core.Tag{dbTag}})

	cfg := core.DefaultConfig()
	cfg.Factors = 8
	cfg.Iterations = 10
	svc := New(ms, cfg, opts...)
	ms.SetOnChange(func() {
		if err := svc.OnInteractionChanged(context.Background()); err != nil {
			t.Errorf("OnInteractionChanged() error = %v", err)
		}
	})
	return ms, svc
}

func TestServiceColdStartAllEntryPoints(t *testing.T) {
	_, svc := newServiceFixture(t)
	ctx := context.Background()

	for _, tt := range []struct {
		name string
		call func() ([]*core.Item, error)
	}{
		{"content", func() ([]*core.Item, error) { return svc.RecommendContent(ctx, 999, 5) }},
		{"cf", func() ([]*core.Item, error) { return svc.RecommendCF(ctx, 999, 5) }},
		{"hybrid", func() ([]*core.Item, error) { return svc.RecommendHybrid(ctx, 999, 5, 0.6) }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			items, err := tt.call()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if items == nil {
				t.Fatal("entry points must return an empty slice, not nil")
			}
			if len(items) != 0 {
				t.Fatalf("cold start should be empty, got %d items", len(items))
			}
		})
	}
}

func TestServiceContentEntryPoint(t *testing.T) {
	ms, svc := newServiceFixture(t)
	ms.AddLike(100, 1)
	ms.AddRead(100, 2, 15)

	items, err := svc.RecommendContent(context.Background(), 100, 2)
	if err != nil {
		t.Fatalf("RecommendContent() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].ID != 3 {
		t.Errorf("top = %d, want 3", items[0].ID)
	}
}

func TestServiceHookKeepsCFFresh(t *testing.T) {
	ms, svc := newServiceFixture(t)
	ms.AddLike(1, 1)
	ms.AddLike(2, 1)

	items, err := svc.RecommendCF(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendCF() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("no unliked candidates yet, got %v", items)
	}

	// 赞写入后钩子同步重训，下一次读立刻看到帖子 3
	ms.AddLike(2, 3)
	items, err = svc.RecommendCF(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("RecommendCF() error = %v", err)
	}
	if len(items) != 1 || items[0].ID != 3 {
		t.Fatalf("got %v, want [3]", items)
	}
}

func TestServiceHybridAlphaOneMatchesContent(t *testing.T) {
	ms, svc := newServiceFixture(t)
	ms.AddLike(100, 1)
	ms.AddRead(100, 2, 15)

	content, err := svc.RecommendContent(context.Background(), 100, 3)
	if err != nil {
		t.Fatalf("RecommendContent() error = %v", err)
	}
	hybrid, err := svc.RecommendHybrid(context.Background(), 100, 3, 1.0)
	if err != nil {
		t.Fatalf("RecommendHybrid() error = %v", err)
	}
	if len(hybrid) != len(content) {
		t.Fatalf("len = %d, want %d", len(hybrid), len(content))
	}
	for i := range content {
		if hybrid[i].ID != content[i].ID {
			t.Errorf("alpha=1.0 order diverged at %d: %d vs %d", i, hybrid[i].ID, content[i].ID)
		}
	}
}

func TestServiceWithFilterNode(t *testing.T) {
	expr, err := filter.NewExpression(`item.id != 3`)
	if err != nil {
		t.Fatalf("NewExpression() error = %v", err)
	}
	ms, svc := newServiceFixture(t, WithNode(expr))
	ms.AddLike(100, 1)

	items, err := svc.RecommendContent(context.Background(), 100, 10)
	if err != nil {
		t.Fatalf("RecommendContent() error = %v", err)
	}
	for _, it := range items {
		if it.ID == 3 {
			t.Fatalf("filter node should have dropped post 3")
		}
	}
	if len(items) != 3 {
		t.Errorf("len = %d, want 3 (catalog minus filtered)", len(items))
	}
}

// failingStore 模拟不可用的数据层：所有读方法都报错。
type failingStore struct{}

var errStoreDown = errors.New("connection refused")

func (failingStore) GetCatalog(context.Context) ([]*core.Post, error)  { return nil, errStoreDown }
func (failingStore) GetTagCatalog(context.Context) ([]core.Tag, error) { return nil, errStoreDown }
func (failingStore) GetPostsByAuthor(context.Context, int64) ([]int64, error) {
	return nil, errStoreDown
}
func (failingStore) GetUserLikes(context.Context, int64) (map[int64]struct{}, error) {
	return nil, errStoreDown
}
func (failingStore) GetUserReads(context.Context, int64, int) (map[int64]struct{}, error) {
	return nil, errStoreDown
}
func (failingStore) GetAllLikes(context.Context) ([]core.Like, error) { return nil, errStoreDown }
func (failingStore) GetAllReads(context.Context, int) ([]core.Read, error) {
	return nil, errStoreDown
}
func (failingStore) GetAllComments(context.Context) ([]core.Comment, error) {
	return nil, errStoreDown
}
func (failingStore) GetAllFollows(context.Context) ([]core.Follow, error) {
	return nil, errStoreDown
}

var _ core.Store = failingStore{}

// 数据层不可用必须作为 UNAVAILABLE 上抛，不得伪装成冷启动的空列表。
func TestServiceSurfacesUpstreamFailure(t *testing.T) {
	svc := New(failingStore{}, core.DefaultConfig())
	ctx := context.Background()

	for _, tt := range []struct {
		name string
		call func() ([]*core.Item, error)
	}{
		{"content", func() ([]*core.Item, error) { return svc.RecommendContent(ctx, 1, 5) }},
		{"cf", func() ([]*core.Item, error) { return svc.RecommendCF(ctx, 1, 5) }},
		{"hybrid", func() ([]*core.Item, error) { return svc.RecommendHybrid(ctx, 1, 5, 0.6) }},
	} {
		t.Run(tt.name, func(t *testing.T) {
			items, err := tt.call()
			if err == nil {
				t.Fatalf("failing store must surface an error, got %d items", len(items))
			}
			if !core.IsUpstreamFailure(err) {
				t.Errorf("error = %v, want UNAVAILABLE domain error", err)
			}
			if len(items) != 0 {
				t.Errorf("failed call should not return items, got %d", len(items))
			}
		})
	}
}

func TestServiceDefaultTopN(t *testing.T) {
	ms, svc := newServiceFixture(t)
	ms.AddLike(100, 1)

	items, err := svc.RecommendContent(context.Background(), 100, 0)
	if err != nil {
		t.Fatalf("RecommendContent() error = %v", err)
	}
	// 默认 TopN = 10，目录只有 4 篇
	if len(items) != 4 {
		t.Errorf("len = %d, want 4", len(items))
	}
}
