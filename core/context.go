package core

import "github.com/rushteam/deckit/pkg/utils"

// SessionContext 承载用户/场景/请求信息，贯穿整个 Pipeline 透传。
type SessionContext struct {
	UserID   string
	DeviceID string
	Scene    string // feed / search / detail ...

	// Labels 是会话级标签，可驱动整个 Pipeline 行为（新用户、重度用户等）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数，例如：
	//   - query: 搜索词（rank.fuzzy 节点读取）
	//   - excluded: 排除集合 map[Key]struct{}（recall.feed 节点读取）
	Params map[string]any
}

// PutLabel 写入会话级 Label。
func (sctx *SessionContext) PutLabel(key string, lbl utils.Label) {
	if sctx.Labels == nil {
		sctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := sctx.Labels[key]; ok {
		sctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	sctx.Labels[key] = lbl
}

// GetLabel 获取会话级 Label。
func (sctx *SessionContext) GetLabel(key string) (utils.Label, bool) {
	if sctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := sctx.Labels[key]
	return lbl, ok
}

// Query 返回 Params 中的搜索词，未设置时为空字符串。
func (sctx *SessionContext) Query() string {
	if sctx == nil || sctx.Params == nil {
		return ""
	}
	q, _ := sctx.Params["query"].(string)
	return q
}

// Excluded 返回 Params 中的排除集合，未设置时为 nil。
func (sctx *SessionContext) Excluded() map[Key]struct{} {
	if sctx == nil || sctx.Params == nil {
		return nil
	}
	ex, _ := sctx.Params["excluded"].(map[Key]struct{})
	return ex
}
