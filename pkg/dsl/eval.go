package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/deckit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("candidate", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("sctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	if celEnv == nil && err == nil {
		err = fmt.Errorf("cel env not initialized")
	}
	return celEnv, err
}

// Eval 是筛选 DSL 解释器，使用 CEL (Common Expression Language) 实现。
// 表达式在 Compile 时编译一次，之后可以在整个候选集上反复 Evaluate。
//
// 表达式语法（CEL 标准语法）：
//   - 基础：candidate.kind == "movie" / candidate.year == "2021"
//   - 数值：candidate.rating > 7.0 / candidate.vote_count >= 100
//   - 逻辑：candidate.kind == "tv" && candidate.rating > 8.0
//   - 包含："Netflix" in candidate.providers / "Drama" in candidate.genres
//   - 标签：label.recall_source == "feed"
//
// 示例：
//   - `candidate.rating >= 6.5 && candidate.vote_count > 50` → 过滤低热度低分条目
//   - `"Animation" in candidate.genres` → 只保留动画
type Eval struct {
	expr string
	env  *cel.Env
	prg  cel.Program
}

// Compile 编译一个 DSL 表达式。表达式为空时返回恒真的解释器。
func Compile(expr string) (*Eval, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	e := &Eval{expr: expr, env: env}
	if expr == "" {
		return e, nil
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %v", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %v", err)
	}
	e.prg = prg
	return e, nil
}

// Evaluate 对单个候选执行表达式，返回布尔结果。
// 注意：CEL 访问不存在的 key 会报错，用户应使用 label.key != null 检查存在性。
func (e *Eval) Evaluate(c *core.Candidate, sctx *core.SessionContext) (bool, error) {
	if e.prg == nil {
		return true, nil
	}

	out, _, err := e.prg.Eval(buildInput(c, sctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(c *core.Candidate, sctx *core.SessionContext) map[string]interface{} {
	providers := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		providers = append(providers, p.Name)
	}

	candidate := map[string]interface{}{
		"id":         c.ID,
		"kind":       c.Kind.String(),
		"name":       c.Name,
		"year":       c.Year,
		"rating":     c.Rating,
		"vote_count": c.VoteCount,
		"genres":     c.Genres,
		"providers":  providers,
	}

	// label.recall_source 直接返回 value，存在性用 label.key != null 判断
	labelAccessor := make(map[string]interface{})
	for k, v := range c.Labels {
		labelAccessor[k] = v.Value
	}

	session := map[string]interface{}{}
	if sctx != nil {
		session = map[string]interface{}{
			"user_id":   sctx.UserID,
			"device_id": sctx.DeviceID,
			"scene":     sctx.Scene,
			"params":    sctx.Params,
		}
	}

	return map[string]interface{}{
		"candidate": candidate,
		"label":     labelAccessor,
		"sctx":      session,
	}
}
