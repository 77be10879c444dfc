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

package service

import (
	"github.com/ecodeclub/bookstore/internal/marketing"
	"github.com/ecodeclub/bookstore/internal/order/internal/domain"
)

// FeeConfig 平台侧固定费用, 单位为分
type FeeConfig struct {
	HandlingFee     int64 `yaml:"handlingFee"`
	BaseDeliveryFee int64 `yaml:"baseDeliveryFee"`
}

// PricingCalculator 纯计算, 不触达任何存储,
// 优惠券的可用性校验由调用方在计算之前完成
type PricingCalculator struct {
	fees FeeConfig
}

func NewPricingCalculator(fees FeeConfig) *PricingCalculator {
	return &PricingCalculator{fees: fees}
}

func (c *PricingCalculator) Calculate(items []domain.Item, discount *marketing.Discount) domain.Pricing {
	var subtotal int64
	for _, it := range items {
		subtotal += it.UnitPrice * it.Quantity
	}
	res := domain.Pricing{
		Subtotal:    subtotal,
		HandlingFee: c.fees.HandlingFee,
		DeliveryFee: c.fees.BaseDeliveryFee,
	}
	if discount != nil {
		switch discount.Type {
		case marketing.DiscountTypePercentage:
			res.DiscountAmount = subtotal * discount.Value / 100
		case marketing.DiscountTypeFixedAmount:
			// 固定额优惠不会把小计打成负数
			res.DiscountAmount = min(discount.Value, subtotal)
		case marketing.DiscountTypeFreeDelivery:
			res.DeliveryFee = 0
		}
	}
	discounted := subtotal - res.DiscountAmount
	if discounted < 0 {
		discounted = 0
	}
	res.FinalAmount = discounted + res.HandlingFee + res.DeliveryFee
	return res
}
