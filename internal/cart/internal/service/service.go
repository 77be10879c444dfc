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
	"fmt"

	"github.com/ecodeclub/bookstore/internal/cart/internal/domain"
	"github.com/ecodeclub/bookstore/internal/cart/internal/repository"
	"gorm.io/gorm"
)

type Service interface {
	FindByUID(ctx context.Context, uid int64) (domain.Cart, error)
	AddItem(ctx context.Context, uid int64, bookID int64, quantity int64) error
	RemoveItem(ctx context.Context, uid int64, bookID int64) error
	// Clear 供订单模块在结算事务内调用, 每笔订单恰好清空一次
	Clear(ctx context.Context, tx *gorm.DB, uid int64) error
}

func NewService(repo repository.CartRepository) Service {
	return &service{repo: repo}
}

type service struct {
	repo repository.CartRepository
}

func (s *service) FindByUID(ctx context.Context, uid int64) (domain.Cart, error) {
	return s.repo.FindByUID(ctx, uid)
}

func (s *service) AddItem(ctx context.Context, uid int64, bookID int64, quantity int64) error {
	if quantity < 1 {
		return fmt.Errorf("要加入购物车的数量非法: %d", quantity)
	}
	return s.repo.UpsertItem(ctx, uid, bookID, quantity)
}

func (s *service) RemoveItem(ctx context.Context, uid int64, bookID int64) error {
	return s.repo.RemoveItem(ctx, uid, bookID)
}

func (s *service) Clear(ctx context.Context, tx *gorm.DB, uid int64) error {
	return s.repo.Clear(ctx, tx, uid)
}
