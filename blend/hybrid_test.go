package blend

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/postrec/core"
)

// stubSource 按固定序列出队，分数随条目给定。
type stubSource struct {
	name  string
	items []*core.Item
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Recall(_ context.Context, rctx *core.RecommendContext) ([]*core.Item, error) {
	items := s.items
	if rctx.TopN > 0 && len(items) > rctx.TopN {
		items = items[:rctx.TopN]
	}
	return items, nil
}

func (s *stubSource) RankAll(context.Context, *core.RecommendContext) ([]*core.Item, error) {
	return s.items, nil
}

func scoredItems(pairs ...float64) []*core.Item {
	// pairs: id, score, id, score, ...
	out := make([]*core.Item, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		it := core.NewItem(int64(pairs[i]))
		it.Score = pairs[i+1]
		out = append(out, it)
	}
	return out
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func newHybrid(content, cf []*core.Item) *Hybrid {
	return &Hybrid{
		Content: &stubSource{name: "content", items: content},
		CF:      &stubSource{name: "cf", items: cf},
		Config:  core.DefaultConfig(),
	}
}

func TestHybridInterleaveOrder(t *testing.T) {
	content := scoredItems(1, 0.9, 2, 0.8, 3, 0.7)
	cf := scoredItems(4, 0.6, 5, 0.5, 6, 0.4)

	tests := []struct {
		name  string
		alpha float64
		topN  int
		want  []int64
	}{
		{"alpha 1.0 retains content order", 1.0, 3, []int64{1, 2, 3}},
		{"alpha 0.0 retains cf order", 0.0, 3, []int64{4, 5, 6}},
		{"alpha 0.6 interleaves at target ratio", 0.6, 5, []int64{1, 2, 4, 3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHybrid(content, cf)
			a := tt.alpha
			got, err := h.Process(context.Background(), &core.RecommendContext{
				UserID: 1, TopN: tt.topN, Alpha: &a,
			}, nil)
			if err != nil {
				t.Fatalf("Process() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("got %v, want %v", ids(got), tt.want)
					break
				}
			}
		})
	}
}

func TestHybridDeduplicates(t *testing.T) {
	h := newHybrid(scoredItems(1, 0.9, 2, 0.5), scoredItems(2, 0.8, 9, 0.2))
	a := 0.5
	got, err := h.Process(context.Background(), &core.RecommendContext{
		UserID: 1, TopN: 5, Alpha: &a,
	}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	want := []int64{1, 2, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("got %v, want %v", ids(got), want)
		}
	}

	// 帖子 2 先由 CF 出队，来源标签应记 cf
	if src, ok := got[1].GetLabel("blend_source"); !ok || src.Value != "cf" {
		t.Errorf("blend_source of post 2 = %q, want cf", src.Value)
	}
}

func TestHybridScoreBlendsNormalizedSides(t *testing.T) {
	// content: 1→1.0, 2→0.0（min-max）；cf: 2→1.0, 9→0.0
	h := newHybrid(scoredItems(1, 0.9, 2, 0.5), scoredItems(2, 0.8, 9, 0.2))
	a := 0.5
	got, err := h.Process(context.Background(), &core.RecommendContext{
		UserID: 1, TopN: 5, Alpha: &a,
	}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	wantScores := map[int64]float64{1: 0.5, 2: 0.5, 9: 0.0}
	for _, it := range got {
		if math.Abs(it.Score-wantScores[it.ID]) > 1e-12 {
			t.Errorf("score(%d) = %v, want %v", it.ID, it.Score, wantScores[it.ID])
		}
	}
}

func TestHybridFlatScoresNormalizeToOne(t *testing.T) {
	h := newHybrid(scoredItems(1, 0.7, 2, 0.7), nil)
	a := 1.0
	got, err := h.Process(context.Background(), &core.RecommendContext{
		UserID: 1, TopN: 5, Alpha: &a,
	}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for _, it := range got {
		if it.Score != 1.0 {
			t.Errorf("flat side should normalize to 1.0, score(%d) = %v", it.ID, it.Score)
		}
	}
}

func TestHybridFallsBackWhenOneSideEmpty(t *testing.T) {
	h := newHybrid(nil, scoredItems(4, 0.6, 5, 0.5))
	a := 0.8
	got, err := h.Process(context.Background(), &core.RecommendContext{
		UserID: 1, TopN: 5, Alpha: &a,
	}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	want := []int64{4, 5}
	if len(got) != len(want) || got[0].ID != 4 || got[1].ID != 5 {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
}

func TestHybridDefaultAlphaFromConfig(t *testing.T) {
	h := newHybrid(scoredItems(1, 0.9), scoredItems(2, 0.5))
	got, err := h.Process(context.Background(), &core.RecommendContext{UserID: 1, TopN: 2}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected items")
	}
	if lbl, ok := got[0].GetLabel("blend_alpha"); !ok || lbl.Value != "0.6" {
		t.Errorf("blend_alpha = %q, want 0.6", lbl.Value)
	}
}
