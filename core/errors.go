package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 冷启动 / 空语料不是错误：对应链路直接返回空结果
//   - 上游数据访问失败（store 不可用）必须作为错误上抛，不得伪装成冷启动
//   - 缓存索引与矩阵不一致属于内部错误，结构上由整组原子替换避免，
//     一旦出现说明有 bug，同样上抛而不是吞掉
type DomainError struct {
	Code    string // 错误代码（如 "UNAVAILABLE", "INCONSISTENT_STATE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "cf"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeUnavailable   = "UNAVAILABLE"        // 上游数据访问失败
	ErrorCodeInconsistent  = "INCONSISTENT_STATE" // 缓存索引与矩阵不匹配
	ErrorCodeInvalidInput  = "INVALID_INPUT"      // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR"     // 其他内部错误
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 数据访问
	ModuleProfile = "profile" // 用户画像
	ModuleRecall  = "recall"  // 召回
	ModuleCF      = "cf"      // 协同过滤
	ModuleBlend   = "blend"   // 混合
)

// IsUpstreamFailure 检查错误是否为上游数据访问失败。
func IsUpstreamFailure(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeUnavailable
	}
	return false
}

// IsInconsistentState 检查错误是否为缓存状态不一致。
func IsInconsistentState(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInconsistent
	}
	return false
}

// UpstreamError 把一个数据访问错误包装成统一的上游失败错误。
// 已经是 DomainError 的原样返回，避免重复包装。
func UpstreamError(err error) error {
	if err == nil {
		return nil
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr
	}
	return NewDomainError(ModuleStore, ErrorCodeUnavailable, "store: "+err.Error())
}
