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

package marketing

import (
	"github.com/ecodeclub/bookstore/internal/marketing/internal/domain"
	"github.com/ecodeclub/bookstore/internal/marketing/internal/service"
)

type (
	Discount     = domain.Discount
	DiscountType = domain.DiscountType
	Service      = service.Service
)

const (
	DiscountTypePercentage   = domain.DiscountTypePercentage
	DiscountTypeFixedAmount  = domain.DiscountTypeFixedAmount
	DiscountTypeFreeDelivery = domain.DiscountTypeFreeDelivery
)

var (
	ErrCouponNotFound      = service.ErrCouponNotFound
	ErrCouponInactive      = service.ErrCouponInactive
	ErrCouponNotYetActive  = service.ErrCouponNotYetActive
	ErrCouponExpired       = service.ErrCouponExpired
	ErrBelowMinCartValue   = service.ErrBelowMinCartValue
	ErrCouponExhausted     = service.ErrCouponExhausted
	ErrCouponUserExhausted = service.ErrCouponUserExhausted
)

type Module struct {
	Svc Service
}
