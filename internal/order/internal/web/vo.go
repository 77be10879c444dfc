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

package web

type CheckoutReq struct {
	// RequestID 客户端每次提交生成的唯一ID, 用于快速拦截连击
	RequestID     string `json:"requestID"`
	PaymentMethod uint8  `json:"paymentMethod"`
	CouponCode    string `json:"couponCode,omitempty"`
}

type CheckoutResp struct {
	Order Order `json:"order"`
}

type ListOrdersReq struct {
	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
}

type ListOrdersResp struct {
	Total  int64   `json:"total,omitempty"`
	Orders []Order `json:"orders,omitempty"`
}

type RetrieveOrderDetailReq struct {
	SN string `json:"sn"`
}

type RetrieveOrderDetailResp struct {
	Order Order `json:"order"`
}

type Order struct {
	SN             string      `json:"sn"`
	Items          []OrderItem `json:"items,omitempty"`
	Subtotal       int64       `json:"subtotal"`
	DiscountAmount int64       `json:"discountAmount"`
	HandlingFee    int64       `json:"handlingFee"`
	DeliveryFee    int64       `json:"deliveryFee"`
	FinalAmount    int64       `json:"finalAmount"`
	PaymentMethod  uint8       `json:"paymentMethod"`
	Status         uint8       `json:"status"`
	PaymentStatus  uint8       `json:"paymentStatus"`
	// GatewayOrderSN 在线支付时返回给客户端, 用于拉起收银台
	GatewayOrderSN string `json:"gatewayOrderSN,omitempty"`
	Ctime          int64  `json:"ctime"`
}

type OrderItem struct {
	BookID    int64  `json:"bookID"`
	Title     string `json:"title"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}
