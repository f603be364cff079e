package balancer

import "errors"

var (
	// ErrInvalidParameters 参数不合法，在开始优化之前就会返回
	ErrInvalidParameters = errors.New("分队参数不合法")
	// ErrDegenerateInput 输入无法进行优化（例如参与者数量少于队伍数量），调用方应当退化为简单分配
	ErrDegenerateInput = errors.New("输入无法进行分队优化")
)
