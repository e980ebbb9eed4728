// Package config 提供引擎参数的 YAML 装载与 Service 组装。
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/postrec/core"
	"github.com/rushteam/postrec/filter"
	"github.com/rushteam/postrec/service"
)

// Config 是可从 YAML 装载的引擎配置：核心参数 + 可选的候选过滤表达式。
//
// 示例：
//
//	like_weight: 1.0
//	read_threshold_seconds: 10
//	mmr_lambda: 0.7
//	factors: 50
//	alpha: 0.6
//	filter_expr: 'item.score > 0.0'
type Config struct {
	core.RecommendConfig `yaml:",inline"`

	// FilterExpr 是可选的 CEL 过滤表达式，作用在每条链路的截断之前。
	FilterExpr string `yaml:"filter_expr"`
}

// Default 返回全默认配置。
func Default() Config {
	return Config{RecommendConfig: core.DefaultConfig()}
}

// Parse 在默认值之上解析 YAML。未出现的字段保持默认。
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, core.NewDomainError(core.ModuleRecall, core.ErrorCodeInvalidInput,
			"config: "+err.Error())
	}
	return cfg, nil
}

// LoadFile 从文件装载配置。
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, core.NewDomainError(core.ModuleRecall, core.ErrorCodeUnavailable,
			"config: "+err.Error())
	}
	return Parse(data)
}

// BuildService 按配置组装推荐服务（含可选过滤节点）。
func (c Config) BuildService(store core.Store) (*service.Service, error) {
	var opts []service.Option
	if c.FilterExpr != "" {
		node, err := filter.NewExpression(c.FilterExpr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithNode(node))
	}
	return service.New(store, c.RecommendConfig, opts...), nil
}
