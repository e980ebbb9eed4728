package core

// RecommendConfig 汇集推荐核心的全部可调参数。
// 零值不可直接使用，请从 DefaultConfig() 出发修改。
type RecommendConfig struct {
	// 行为信号权重
	LikeWeight    float64 `yaml:"like_weight"`
	ReadWeight    float64 `yaml:"read_weight"`
	CommentWeight float64 `yaml:"comment_weight"`
	FollowWeight  float64 `yaml:"follow_weight"`

	// ReadThresholdSeconds 是阅读计入信号的最小时长（秒）。
	ReadThresholdSeconds int `yaml:"read_threshold_seconds"`

	// CommentOncePerPost 控制同一 (user, post) 多条评论的聚合策略：
	// false（默认）逐条累加权重；true 每对只记一次。
	CommentOncePerPost bool `yaml:"comment_once_per_post"`

	// 内容召回
	MMRLambda float64 `yaml:"mmr_lambda"` // 相关性 / 冗余度权衡系数
	VocabSize int     `yaml:"vocab_size"` // TF-IDF 词表上限

	// 协同过滤（implicit ALS）
	Factors    int     `yaml:"factors"`
	Reg        float64 `yaml:"reg"`
	Iterations int     `yaml:"iterations"`
	Seed       int64   `yaml:"seed"` // 隐向量初始化种子，固定以保证可复现

	// 混合
	Alpha float64 `yaml:"alpha"` // 内容侧目标占比

	// DefaultTopN 是请求未指定 TopN 时的默认条数。
	DefaultTopN int `yaml:"default_top_n"`
}

// DefaultConfig 返回与线上语义一致的默认参数。
func DefaultConfig() RecommendConfig {
	return RecommendConfig{
		LikeWeight:           1.0,
		ReadWeight:           0.5,
		CommentWeight:        0.8,
		FollowWeight:         0.3,
		ReadThresholdSeconds: 10,
		CommentOncePerPost:   false,
		MMRLambda:            0.7,
		VocabSize:            1000,
		Factors:              50,
		Reg:                  0.01,
		Iterations:           20,
		Seed:                 42,
		Alpha:                0.6,
		DefaultTopN:          10,
	}
}
