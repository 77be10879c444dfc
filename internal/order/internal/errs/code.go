package errs

var (
	SystemError       = ErrorCode{Code: 513001, Msg: "系统错误"}
	InvalidInput      = ErrorCode{Code: 513002, Msg: "非法输入"}
	InsufficientStock = ErrorCode{Code: 513003, Msg: "图书库存不足"}
	CouponUnusable    = ErrorCode{Code: 513004, Msg: "优惠券不可用"}
)

type ErrorCode struct {
	Code int
	Msg  string
}
