package profile

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/store"
)

func seedPosts(ms *store.MemoryStore) {
	goTag := core.Tag{Slug: "go", Name: "Go"}
	rustTag := core.Tag{Slug: "rust", Name: "Rust"}

	ms.AddPost(&core.Post{ID: 1, Title: "concurrency patterns", Content: "goroutines and channels", AuthorID: 7, Tags: []core.Tag{goTag, rustTag}})
	ms.AddPost(&core.Post{ID: 2, Title: "error handling", Content: "errors are values", AuthorID: 7, Tags: []core.Tag{goTag}})
	ms.AddPost(&core.Post{ID: 3, Title: "ownership model", Content: "the borrow checker", AuthorID: 8, Tags: []core.Tag{rustTag}})
}

func TestBuilderColdStart(t *testing.T) {
	ms := store.NewMemoryStore()
	seedPosts(ms)

	b := &Builder{Store: ms, Config: core.DefaultConfig()}
	prof, err := b.Build(context.Background(), 100)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if prof != nil {
		t.Fatalf("cold-start profile = %+v, want nil", prof)
	}
}

func TestBuilderShortReadIsNotASignal(t *testing.T) {
	ms := store.NewMemoryStore()
	seedPosts(ms)
	ms.AddRead(100, 1, 3) // 低于 10s 阈值

	b := &Builder{Store: ms, Config: core.DefaultConfig()}
	prof, err := b.Build(context.Background(), 100)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if prof != nil {
		t.Fatal("sub-threshold read should leave the user cold")
	}
}

func TestBuilderTagProfile(t *testing.T) {
	// 赞 {go,rust} 与 {go}，读 {rust} 15 秒：
	// 标签画像 = (1.0·[1,1] + 1.0·[1,0] + 0.5·[0,1]) / 2.5 = [0.8, 0.6]
	ms := store.NewMemoryStore()
	seedPosts(ms)
	ms.AddLike(100, 1)
	ms.AddLike(100, 2)
	ms.AddRead(100, 3, 15)

	b := &Builder{Store: ms, Config: core.DefaultConfig()}
	prof, err := b.Build(context.Background(), 100)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if prof == nil {
		t.Fatal("profile should exist")
	}

	if got, _ := prof.TagIndex.Position("go"); got != 0 {
		t.Fatalf("go position = %d, want 0", got)
	}
	want := []float64{0.8, 0.6}
	for i := range want {
		if math.Abs(prof.TagProfile[i]-want[i]) > 1e-9 {
			t.Errorf("TagProfile[%d] = %v, want %v", i, prof.TagProfile[i], want[i])
		}
	}

	// 文本画像已 L2 归一化
	var ss float64
	for _, v := range prof.TextProfile {
		ss += v * v
	}
	if math.Abs(math.Sqrt(ss)-1) > 1e-9 {
		t.Errorf("TextProfile norm = %v, want 1", math.Sqrt(ss))
	}
}

func TestBuilderLikedReadCountsOnce(t *testing.T) {
	// 同一帖子又赞又读：阅读不重复计入，画像等同于只赞
	ms := store.NewMemoryStore()
	seedPosts(ms)
	ms.AddLike(100, 1)
	ms.AddRead(100, 1, 60)

	b := &Builder{Store: ms, Config: core.DefaultConfig()}
	prof, err := b.Build(context.Background(), 100)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []float64{1, 1} // [go, rust]，权重 1.0/1.0
	for i := range want {
		if math.Abs(prof.TagProfile[i]-want[i]) > 1e-9 {
			t.Errorf("TagProfile[%d] = %v, want %v", i, prof.TagProfile[i], want[i])
		}
	}
}
