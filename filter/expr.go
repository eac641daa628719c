package filter

import (
	"context"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/pkg/dsl"
)

// ExprFilter 按 CEL 表达式过滤候选：表达式为真时保留。
// 表达式在构造时编译一次，之后在整个候选集上复用。
//
// 示例：
//   - `candidate.rating >= 6.5` → 剔除低分
//   - `"Netflix" in candidate.providers` → 只保留指定渠道
type ExprFilter struct {
	expr string
	eval *dsl.Eval
}

// NewExprFilter 编译表达式并创建过滤器。表达式为空时恒保留。
func NewExprFilter(expr string) (*ExprFilter, error) {
	eval, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{expr: expr, eval: eval}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	sctx *core.SessionContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil {
		return true, nil
	}
	keep, err := f.eval.Evaluate(c, sctx)
	if err != nil {
		// 表达式求值失败时保留候选，错误上抛由 FilterNode 统一忽略
		return false, err
	}
	return !keep, nil
}
