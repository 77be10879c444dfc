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

// GatewayOrder 支付网关侧创建的支付单
type GatewayOrder struct {
	// SN 网关侧支付单号, 结算回调靠它定位订单
	SN       string
	Amount   int64
	Currency string
	Receipt  string
}

// WebhookEvent 通过签名校验之后的回调事件
type WebhookEvent struct {
	// Type 事件类型, 只有支付捕获成功事件会触发结算
	Type string
	// GatewayOrderSN 网关侧支付单号
	GatewayOrderSN string
	// GatewayPaymentSN 网关侧支付流水号
	GatewayPaymentSN string
	// Signature 请求头中携带的原始签名, 结算时落库存档
	Signature string
}

// EventPaymentCaptured 支付捕获成功
const EventPaymentCaptured = "payment.captured"

func (e WebhookEvent) IsCaptured() bool {
	return e.Type == EventPaymentCaptured
}
