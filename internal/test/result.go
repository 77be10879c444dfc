package test

// Result 与 ginx.Result 的 JSON 结构一致, 用于在集成测试里反序列化响应体
type Result[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}
