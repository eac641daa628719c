// Package deckit 是一个滑卡式媒体推荐工具包（Deck Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank → PostProcess）
// - Deck-first: 牌堆控制器维护候选池、可见牌堆、筛选调和与预取
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测
// - Node 可扩展: 自定义 Node 即可插拔扩展
package deckit

import "github.com/rushteam/deckit/pipeline"

// 轻量 facade：便于用户直接 import "deckit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
