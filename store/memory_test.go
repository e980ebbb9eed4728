package store

import (
	"context"
	"testing"

	"github.com/rushteam/postrec/core"
)

func TestMemoryStoreLikeUniqueness(t *testing.T) {
	ms := NewMemoryStore()
	fired := 0
	ms.SetOnChange(func() { fired++ })

	if !ms.AddLike(1, 10) {
		t.Fatal("first like should be recorded")
	}
	if ms.AddLike(1, 10) {
		t.Fatal("duplicate like should be rejected")
	}
	if fired != 1 {
		t.Errorf("hook fired %d times, want 1 (duplicates are silent)", fired)
	}

	if !ms.RemoveLike(1, 10) {
		t.Fatal("RemoveLike should succeed for an existing like")
	}
	if ms.RemoveLike(1, 10) {
		t.Fatal("RemoveLike should fail when the like is gone")
	}
	if fired != 2 {
		t.Errorf("hook fired %d times, want 2", fired)
	}
}

func TestMemoryStoreHookFiresPerSignal(t *testing.T) {
	ms := NewMemoryStore()
	fired := 0
	ms.SetOnChange(func() { fired++ })

	ms.AddPost(&core.Post{ID: 1, AuthorID: 7}) // 帖子登记不是信号
	ms.AddLike(1, 1)
	ms.AddRead(1, 1, 12)
	ms.AddComment(1, 1)
	ms.AddFollow(1, 7)
	ms.AddFollow(1, 7) // 重复关注不触发

	if fired != 4 {
		t.Errorf("hook fired %d times, want 4", fired)
	}
}

func TestMemoryStoreHookMayReadBack(t *testing.T) {
	ms := NewMemoryStore()
	ms.SetOnChange(func() {
		// 钩子在锁外触发，回读不应死锁
		if _, err := ms.GetAllLikes(context.Background()); err != nil {
			t.Errorf("GetAllLikes() error = %v", err)
		}
	})
	ms.AddLike(1, 1)
}

func TestMemoryStoreGetUserReadsExcludesLiked(t *testing.T) {
	ms := NewMemoryStore()
	ms.AddLike(1, 10)
	ms.AddRead(1, 10, 30)
	ms.AddRead(1, 20, 30)
	ms.AddRead(1, 30, 5)

	reads, err := ms.GetUserReads(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("GetUserReads() error = %v", err)
	}
	if _, ok := reads[10]; ok {
		t.Error("liked post should not appear in reads")
	}
	if _, ok := reads[20]; !ok {
		t.Error("qualifying read missing")
	}
	if _, ok := reads[30]; ok {
		t.Error("sub-threshold read should be excluded")
	}
}

func TestMemoryStoreGetAllReadsDedupKeepsMax(t *testing.T) {
	ms := NewMemoryStore()
	ms.AddRead(1, 10, 12)
	ms.AddRead(1, 10, 40)
	ms.AddRead(1, 10, 3) // 不达标

	reads, err := ms.GetAllReads(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetAllReads() error = %v", err)
	}
	if len(reads) != 1 {
		t.Fatalf("len = %d, want 1 (per-pair dedup)", len(reads))
	}
	if reads[0].Seconds != 40 {
		t.Errorf("Seconds = %d, want 40 (max qualifying)", reads[0].Seconds)
	}
}

func TestMemoryStoreCatalogsSorted(t *testing.T) {
	ms := NewMemoryStore()
	ms.AddPost(&core.Post{ID: 3, AuthorID: 7, Tags: []core.Tag{{Slug: "rust", Name: "Rust"}}})
	ms.AddPost(&core.Post{ID: 1, AuthorID: 7, Tags: []core.Tag{{Slug: "go", Name: "Go"}}})
	ms.AddPost(&core.Post{ID: 2, AuthorID: 8})

	posts, err := ms.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("GetCatalog() error = %v", err)
	}
	for i := 1; i < len(posts); i++ {
		if posts[i-1].ID >= posts[i].ID {
			t.Fatalf("catalog not sorted by ID: %v then %v", posts[i-1].ID, posts[i].ID)
		}
	}

	tags, err := ms.GetTagCatalog(context.Background())
	if err != nil {
		t.Fatalf("GetTagCatalog() error = %v", err)
	}
	if len(tags) != 2 || tags[0].Slug != "go" || tags[1].Slug != "rust" {
		t.Fatalf("tag catalog = %v, want slug-sorted [go rust]", tags)
	}

	byAuthor, err := ms.GetPostsByAuthor(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetPostsByAuthor() error = %v", err)
	}
	if len(byAuthor) != 2 || byAuthor[0] != 1 || byAuthor[1] != 3 {
		t.Fatalf("author posts = %v, want [1 3]", byAuthor)
	}
}
