// Package filter 提供候选过滤节点。
package filter

import (
	"context"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/pipeline"
)

// Expression 是 CEL (Common Expression Language) 表达式过滤节点：
// 对每个候选求值一条布尔表达式，false 即剔除。
//
// 可用变量：
//   - item:   {"id": int, "score": double}
//   - labels: map[string]string（Label 的 Value）
//   - params: 请求级 Params
//
// 示例：
//   - `item.score > 0.1`
//   - `labels["recall_source"] == "content"`
//   - `!('exclude_ids' in params) || !(item.id in params.exclude_ids)`
//
// 求值报错的候选按不通过处理。因此引用 params 里的可选键必须
// 先用 `'key' in params` 守护：直接写 `!(item.id in params.exclude_ids)`
// 会在请求未带 exclude_ids 时对每个候选报错，整个列表被清空。
//
// 表达式在构造时编译一次；编译产物线程安全，可跨请求复用。
type Expression struct {
	Expr string

	prg cel.Program
}

// NewExpression 编译表达式并返回过滤节点。表达式非法时报错。
func NewExpression(expr string) (*Expression, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("labels", cel.DynType),
		cel.Variable("params", cel.DynType),
	)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInternalError,
			"filter: cel env: "+err.Error())
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"filter: bad expression: "+issues.Err().Error())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"filter: bad expression: "+err.Error())
	}
	return &Expression{Expr: expr, prg: prg}, nil
}

func (n *Expression) Name() string        { return "filter.expression" }
func (n *Expression) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *Expression) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 || n.prg == nil {
		return items, nil
	}

	params := rctx.Params
	if params == nil {
		params = map[string]any{}
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		labels := make(map[string]string, len(it.Labels))
		for k, v := range it.Labels {
			labels[k] = v.Value
		}
		val, _, err := n.prg.Eval(map[string]any{
			"item":   map[string]any{"id": it.ID, "score": it.Score},
			"labels": labels,
			"params": params,
		})
		if err != nil {
			continue // 求值失败的候选按不通过处理
		}
		if keep, ok := val.Value().(bool); ok && keep {
			out = append(out, it)
		}
	}
	return out, nil
}
