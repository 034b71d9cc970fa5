package constants

// 订单状态常量
const (
	OrderStatusCreated              = "created"
	OrderStatusAwaitingConfirmation = "awaiting_confirmation"
	OrderStatusPaid                 = "paid"
	OrderStatusFailed               = "failed"
)

// 支付状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
)

// 支付渠道常量（网关 payType 取值）
const (
	PaymentChannelWechat   = "WECHAT"
	PaymentChannelAlipay   = "ALIPAY"
	PaymentChannelUnionpay = "UNIONPAY"
)

// 支付交互方式常量
const (
	PaymentInteractionQR       = "qr"
	PaymentInteractionRedirect = "redirect"
	PaymentInteractionForm     = "form"
)

// 网关回调应答常量
const (
	CallbackAckSuccess = "SUCCESS"
	CallbackAckFail    = "FAIL"
)

// GatewayCodeSuccess 网关业务成功码
const GatewayCodeSuccess = "00"

// 队列常量
const (
	QueueDefault        = "default"
	TaskOrderPaidNotify = "order:paid_notify"
)
