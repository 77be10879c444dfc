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

package event

const orderSettledEventName = "order_settled_events"

// OrderSettledEvent 结算事务提交之后发出, 供下游履约/通知链路消费
type OrderSettledEvent struct {
	OrderSN       string `json:"orderSN"`
	BuyerID       int64  `json:"buyerID"`
	FinalAmount   int64  `json:"finalAmount"`
	PaymentMethod uint8  `json:"paymentMethod"`
}
