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

	"github.com/ecodeclub/bookstore/internal/product/internal/domain"
	"github.com/ecodeclub/bookstore/internal/product/internal/repository"
	"gorm.io/gorm"
)

// Service 图书对外的窄契约: 订单模块只读取价格/库存, 并在结算事务内扣减库存。
// 图书目录本身的管理操作不在这里
type Service interface {
	FindByID(ctx context.Context, id int64) (domain.Book, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Book, error)
	// DecrementStock 必须在调用方的事务 tx 内执行,
	// 库存不足时返回 repository.ErrInsufficientStock 并由调用方回滚整个事务
	DecrementStock(ctx context.Context, tx *gorm.DB, id int64, n int64) error
}

func NewService(repo repository.BookRepository) Service {
	return &service{repo: repo}
}

type service struct {
	repo repository.BookRepository
}

func (s *service) FindByID(ctx context.Context, id int64) (domain.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindByIDs(ctx context.Context, ids []int64) ([]domain.Book, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *service) DecrementStock(ctx context.Context, tx *gorm.DB, id int64, n int64) error {
	return s.repo.DecrementStock(ctx, tx, id, n)
}
