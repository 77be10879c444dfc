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

package repository

import (
	"context"

	"github.com/ecodeclub/bookstore/internal/marketing/internal/domain"
	"github.com/ecodeclub/bookstore/internal/marketing/internal/repository/dao"
	"gorm.io/gorm"
)

var (
	ErrDiscountNotFound  = dao.ErrDiscountNotFound
	ErrUsesExhausted     = dao.ErrUsesExhausted
	ErrUserUsesExhausted = dao.ErrUserUsesExhausted
)

type DiscountRepository interface {
	Create(ctx context.Context, d domain.Discount) (int64, error)
	FindByCode(ctx context.Context, code string) (domain.Discount, error)
	UserUsedCount(ctx context.Context, discountID int64, uid int64) (int64, error)
	RecordUsage(ctx context.Context, tx *gorm.DB, discountID int64, uid int64) error
}

func NewRepository(d dao.DiscountDAO) DiscountRepository {
	return &discountRepository{d: d}
}

type discountRepository struct {
	d dao.DiscountDAO
}

func (r *discountRepository) Create(ctx context.Context, d domain.Discount) (int64, error) {
	return r.d.Create(ctx, r.toEntity(d))
}

func (r *discountRepository) FindByCode(ctx context.Context, code string) (domain.Discount, error) {
	d, err := r.d.FindByCode(ctx, code)
	if err != nil {
		return domain.Discount{}, err
	}
	return r.toDomain(d), nil
}

func (r *discountRepository) UserUsedCount(ctx context.Context, discountID int64, uid int64) (int64, error) {
	return r.d.UserUsedCount(ctx, discountID, uid)
}

func (r *discountRepository) RecordUsage(ctx context.Context, tx *gorm.DB, discountID int64, uid int64) error {
	return r.d.RecordUsage(ctx, tx, discountID, uid)
}

func (r *discountRepository) toEntity(d domain.Discount) dao.Discount {
	return dao.Discount{
		Id:             d.ID,
		Code:           d.Code,
		Description:    d.Description,
		Type:           d.Type.ToUint8(),
		Value:          d.Value,
		MinCartValue:   d.MinCartValue,
		MaxUses:        d.MaxUses,
		MaxUsesPerUser: d.MaxUsesPerUser,
		TimesUsed:      d.TimesUsed,
		Active:         d.Active,
		StartAt:        d.StartAt,
		EndAt:          d.EndAt,
	}
}

func (r *discountRepository) toDomain(d dao.Discount) domain.Discount {
	return domain.Discount{
		ID:             d.Id,
		Code:           d.Code,
		Description:    d.Description,
		Type:           domain.DiscountType(d.Type),
		Value:          d.Value,
		MinCartValue:   d.MinCartValue,
		MaxUses:        d.MaxUses,
		MaxUsesPerUser: d.MaxUsesPerUser,
		TimesUsed:      d.TimesUsed,
		Active:         d.Active,
		StartAt:        d.StartAt,
		EndAt:          d.EndAt,
		Ctime:          d.Ctime,
		Utime:          d.Utime,
	}
}
