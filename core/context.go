package core

// RecommendContext 承载一次推荐请求的用户与参数，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID int64

	// TopN 期望返回的条数；<=0 时由各节点使用自身默认值。
	TopN int

	// Alpha 是混合推荐的内容占比目标（0~1）。nil 表示使用配置默认值。
	// 只有 hybrid 链路读取它。
	Alpha *float64

	// Params 请求级上下文参数，可被自定义 Node（如表达式过滤）读取。
	Params map[string]any
}
