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
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ecodeclub/bookstore/internal/marketing/internal/domain"
	"github.com/ecodeclub/bookstore/internal/marketing/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCouponNotFound      = repository.ErrDiscountNotFound
	ErrCouponInactive      = errors.New("优惠券未启用")
	ErrCouponNotYetActive  = errors.New("优惠券尚未生效")
	ErrCouponExpired       = errors.New("优惠券已过期")
	ErrBelowMinCartValue   = errors.New("未达到优惠券的最低消费金额")
	ErrCouponExhausted     = repository.ErrUsesExhausted
	ErrCouponUserExhausted = repository.ErrUserUsesExhausted
)

type Service interface {
	// Validate 校验优惠券对该用户与该小计是否可用, 不产生任何副作用。
	// 配额的真正消耗发生在结算时的 RecordUsage
	Validate(ctx context.Context, code string, uid int64, subtotal int64) (domain.Discount, error)
	// RecordUsage 仅在订单结算事务内调用
	RecordUsage(ctx context.Context, tx *gorm.DB, discountID int64, uid int64) error
}

func NewService(repo repository.DiscountRepository) Service {
	return &service{repo: repo, now: time.Now}
}

type service struct {
	repo repository.DiscountRepository
	now  func() time.Time
}

func (s *service) Validate(ctx context.Context, code string, uid int64, subtotal int64) (domain.Discount, error) {
	d, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return domain.Discount{}, err
	}
	if !d.Active {
		return domain.Discount{}, ErrCouponInactive
	}
	now := s.now().UnixMilli()
	if d.StartAt != 0 && now < d.StartAt {
		return domain.Discount{}, ErrCouponNotYetActive
	}
	if d.EndAt != 0 && now > d.EndAt {
		return domain.Discount{}, ErrCouponExpired
	}
	if subtotal < d.MinCartValue {
		return domain.Discount{}, ErrBelowMinCartValue
	}
	if d.TimesUsed >= d.MaxUses {
		return domain.Discount{}, ErrCouponExhausted
	}
	used, err := s.repo.UserUsedCount(ctx, d.ID, uid)
	if err != nil {
		return domain.Discount{}, err
	}
	if used >= d.MaxUsesPerUser {
		return domain.Discount{}, ErrCouponUserExhausted
	}
	return d, nil
}

func (s *service) RecordUsage(ctx context.Context, tx *gorm.DB, discountID int64, uid int64) error {
	return s.repo.RecordUsage(ctx, tx, discountID, uid)
}
