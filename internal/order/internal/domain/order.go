// Copyright 2023 ecodeclub
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package domain

// OrderStatus 履约状态机: 待处理 → 处理中 → 已发货 → 已送达,
// 已取消/已失败 是从 待处理/处理中 可达的终态
type OrderStatus uint8

func (s OrderStatus) ToUint8() uint8 {
	return uint8(s)
}

const (
	OrderStatusPending    OrderStatus = 1
	OrderStatusProcessing OrderStatus = 2
	OrderStatusShipped    OrderStatus = 3
	OrderStatusDelivered  OrderStatus = 4
	OrderStatusCancelled  OrderStatus = 5
	OrderStatusFailed     OrderStatus = 6
)

// PaymentStatus 结算状态机, 与履约状态互相独立:
// 货到付款的订单可以在 PaymentStatus 仍为待支付时推进履约
type PaymentStatus uint8

func (s PaymentStatus) ToUint8() uint8 {
	return uint8(s)
}

const (
	PaymentStatusPending   PaymentStatus = 1
	PaymentStatusCompleted PaymentStatus = 2
	PaymentStatusFailed    PaymentStatus = 3
)

type PaymentMethod uint8

func (m PaymentMethod) ToUint8() uint8 {
	return uint8(m)
}

const (
	// PaymentMethodCOD 货到付款, 款项在线下收取, PaymentStatus 一直保持待支付
	PaymentMethodCOD PaymentMethod = 1
	// PaymentMethodOnline 在线支付, 履约在 PaymentStatus 完成之前不得推进
	PaymentMethodOnline PaymentMethod = 2
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodOnline
}

type Order struct {
	ID      int64
	SN      string
	BuyerID int64
	// IdempotencyKey 客户端提交的幂等键, 可为空, 非空时全局唯一
	IdempotencyKey string
	Items          []Item

	// 金额字段单位为分, 创建订单时冻结, 不会再从目录重算。
	// 不变式: FinalAmount == max(0, Subtotal-DiscountAmount) + HandlingFee + DeliveryFee
	Subtotal       int64
	DiscountAmount int64
	HandlingFee    int64
	DeliveryFee    int64
	FinalAmount    int64

	// AppliedDiscountID 弱引用, 0 表示未使用优惠券, 配额归营销模块管
	AppliedDiscountID int64

	PaymentMethod PaymentMethod
	Status        OrderStatus
	PaymentStatus PaymentStatus

	// 网关侧凭据, 仅在线支付使用; 支付流水号与签名在结算时一次性写入
	GatewayOrderSN   string
	GatewayPaymentSN string
	GatewaySignature string

	Ctime int64
	Utime int64
}

type Item struct {
	BookID   int64
	SellerID int64
	Title    string
	Quantity int64
	// UnitPrice 下单时刻的单价快照, 单位为分
	UnitPrice int64
}

// Pricing 定价计算结果
type Pricing struct {
	Subtotal       int64
	DiscountAmount int64
	HandlingFee    int64
	DeliveryFee    int64
	FinalAmount    int64
}
