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
	"testing"
	"time"

	"github.com/ecodeclub/bookstore/internal/marketing/internal/domain"
	"github.com/ecodeclub/bookstore/internal/marketing/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 固定的"当前时间", 避免窗口类用例依赖真实时钟
var testNow = time.UnixMilli(1700000000000)

type fakeDiscountRepository struct {
	discounts  map[string]domain.Discount
	usedCounts map[int64]int64
}

func (f *fakeDiscountRepository) Create(_ context.Context, _ domain.Discount) (int64, error) {
	panic("不应该被调用")
}

func (f *fakeDiscountRepository) FindByCode(_ context.Context, code string) (domain.Discount, error) {
	d, ok := f.discounts[code]
	if !ok {
		return domain.Discount{}, repository.ErrDiscountNotFound
	}
	return d, nil
}

func (f *fakeDiscountRepository) UserUsedCount(_ context.Context, discountID int64, _ int64) (int64, error) {
	return f.usedCounts[discountID], nil
}

func (f *fakeDiscountRepository) RecordUsage(_ context.Context, _ *gorm.DB, _ int64, _ int64) error {
	return nil
}

func TestService_Validate(t *testing.T) {
	t.Parallel()

	base := domain.Discount{
		ID:             1,
		Code:           "SAVE10",
		Type:           domain.DiscountTypePercentage,
		Value:          10,
		MinCartValue:   40000,
		MaxUses:        100,
		MaxUsesPerUser: 2,
		Active:         true,
	}

	testCases := []struct {
		name      string
		discount  func() domain.Discount
		usedCount int64
		code      string
		subtotal  int64
		wantErr   error
	}{
		{
			name:     "可用",
			discount: func() domain.Discount { return base },
			code:     "SAVE10",
			subtotal: 50000,
		},
		{
			name:     "代码大小写与首尾空格被归一化",
			discount: func() domain.Discount { return base },
			code:     "  save10 ",
			subtotal: 50000,
		},
		{
			name:     "不存在",
			discount: func() domain.Discount { return base },
			code:     "NOPE",
			subtotal: 50000,
			wantErr:  ErrCouponNotFound,
		},
		{
			name: "未启用",
			discount: func() domain.Discount {
				d := base
				d.Active = false
				return d
			},
			code:     "SAVE10",
			subtotal: 50000,
			wantErr:  ErrCouponInactive,
		},
		{
			name: "尚未生效",
			discount: func() domain.Discount {
				d := base
				d.StartAt = testNow.Add(time.Hour).UnixMilli()
				return d
			},
			code:     "SAVE10",
			subtotal: 50000,
			wantErr:  ErrCouponNotYetActive,
		},
		{
			name: "已过期",
			discount: func() domain.Discount {
				d := base
				d.EndAt = testNow.Add(-time.Hour).UnixMilli()
				return d
			},
			code:     "SAVE10",
			subtotal: 50000,
			wantErr:  ErrCouponExpired,
		},
		{
			name: "窗口边界上仍然可用",
			discount: func() domain.Discount {
				d := base
				d.StartAt = testNow.UnixMilli()
				d.EndAt = testNow.UnixMilli()
				return d
			},
			code:     "SAVE10",
			subtotal: 50000,
		},
		{
			name:     "未达到最低消费金额",
			discount: func() domain.Discount { return base },
			code:     "SAVE10",
			subtotal: 39999,
			wantErr:  ErrBelowMinCartValue,
		},
		{
			name:     "恰好达到最低消费金额",
			discount: func() domain.Discount { return base },
			code:     "SAVE10",
			subtotal: 40000,
		},
		{
			name: "全局配额耗尽",
			discount: func() domain.Discount {
				d := base
				d.TimesUsed = d.MaxUses
				return d
			},
			code:     "SAVE10",
			subtotal: 50000,
			wantErr:  ErrCouponExhausted,
		},
		{
			name:      "用户配额耗尽",
			discount:  func() domain.Discount { return base },
			usedCount: 2,
			code:      "SAVE10",
			subtotal:  50000,
			wantErr:   ErrCouponUserExhausted,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := tc.discount()
			repo := &fakeDiscountRepository{
				discounts:  map[string]domain.Discount{d.Code: d},
				usedCounts: map[int64]int64{d.ID: tc.usedCount},
			}
			svc := &service{repo: repo, now: func() time.Time { return testNow }}

			res, err := svc.Validate(context.Background(), tc.code, 123, tc.subtotal)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, d, res)
		})
	}
}
