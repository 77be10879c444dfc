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
	"testing"

	"github.com/ecodeclub/bookstore/internal/marketing"
	"github.com/ecodeclub/bookstore/internal/order/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestPricingCalculator_Calculate(t *testing.T) {
	t.Parallel()
	calculator := NewPricingCalculator(FeeConfig{
		HandlingFee:     2000,
		BaseDeliveryFee: 5000,
	})

	testCases := []struct {
		name     string
		items    []domain.Item
		discount *marketing.Discount
		wantRes  domain.Pricing
	}{
		{
			name: "无优惠券",
			items: []domain.Item{
				{BookID: 1, Quantity: 2, UnitPrice: 19900},
				{BookID: 2, Quantity: 1, UnitPrice: 10200},
			},
			wantRes: domain.Pricing{
				Subtotal:    50000,
				HandlingFee: 2000,
				DeliveryFee: 5000,
				FinalAmount: 57000,
			},
		},
		{
			name: "百分比优惠券",
			items: []domain.Item{
				{BookID: 1, Quantity: 1, UnitPrice: 50000},
			},
			discount: &marketing.Discount{
				Type:  marketing.DiscountTypePercentage,
				Value: 10,
			},
			wantRes: domain.Pricing{
				Subtotal:       50000,
				DiscountAmount: 5000,
				HandlingFee:    2000,
				DeliveryFee:    5000,
				FinalAmount:    52000,
			},
		},
		{
			name: "固定额优惠券",
			items: []domain.Item{
				{BookID: 1, Quantity: 1, UnitPrice: 30000},
			},
			discount: &marketing.Discount{
				Type:  marketing.DiscountTypeFixedAmount,
				Value: 8000,
			},
			wantRes: domain.Pricing{
				Subtotal:       30000,
				DiscountAmount: 8000,
				HandlingFee:    2000,
				DeliveryFee:    5000,
				FinalAmount:    29000,
			},
		},
		{
			name: "固定额优惠券超过小计时按小计封顶",
			items: []domain.Item{
				{BookID: 1, Quantity: 1, UnitPrice: 5000},
			},
			discount: &marketing.Discount{
				Type:  marketing.DiscountTypeFixedAmount,
				Value: 9000,
			},
			wantRes: domain.Pricing{
				Subtotal:       5000,
				DiscountAmount: 5000,
				HandlingFee:    2000,
				DeliveryFee:    5000,
				FinalAmount:    7000,
			},
		},
		{
			name: "免配送费优惠券",
			items: []domain.Item{
				{BookID: 1, Quantity: 3, UnitPrice: 10000},
			},
			discount: &marketing.Discount{
				Type: marketing.DiscountTypeFreeDelivery,
			},
			wantRes: domain.Pricing{
				Subtotal:    30000,
				HandlingFee: 2000,
				DeliveryFee: 0,
				FinalAmount: 32000,
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := calculator.Calculate(tc.items, tc.discount)
			assert.Equal(t, tc.wantRes, res)
		})
	}
}

func TestPricingCalculator_Calculate_ZeroFees(t *testing.T) {
	t.Parallel()
	calculator := NewPricingCalculator(FeeConfig{})
	res := calculator.Calculate([]domain.Item{
		{BookID: 1, Quantity: 1, UnitPrice: 100},
	}, &marketing.Discount{
		Type:  marketing.DiscountTypeFixedAmount,
		Value: 100,
	})
	assert.Equal(t, int64(0), res.FinalAmount)
}
