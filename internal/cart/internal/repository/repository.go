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

	"github.com/ecodeclub/bookstore/internal/cart/internal/domain"
	"github.com/ecodeclub/bookstore/internal/cart/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"gorm.io/gorm"
)

var ErrCartNotFound = dao.ErrCartNotFound

type CartRepository interface {
	FindByUID(ctx context.Context, uid int64) (domain.Cart, error)
	UpsertItem(ctx context.Context, uid int64, bookID int64, quantity int64) error
	RemoveItem(ctx context.Context, uid int64, bookID int64) error
	Clear(ctx context.Context, tx *gorm.DB, uid int64) error
}

func NewRepository(d dao.CartDAO) CartRepository {
	return &cartRepository{d: d}
}

type cartRepository struct {
	d dao.CartDAO
}

func (c *cartRepository) FindByUID(ctx context.Context, uid int64) (domain.Cart, error) {
	cart, items, err := c.d.FindByUID(ctx, uid)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{
		ID:  cart.Id,
		UID: cart.UID,
		Items: slice.Map(items, func(idx int, src dao.CartItem) domain.Item {
			return domain.Item{
				BookID:   src.BookId,
				Quantity: src.Quantity,
			}
		}),
		Ctime: cart.Ctime,
		Utime: cart.Utime,
	}, nil
}

func (c *cartRepository) UpsertItem(ctx context.Context, uid int64, bookID int64, quantity int64) error {
	return c.d.UpsertItem(ctx, uid, bookID, quantity)
}

func (c *cartRepository) RemoveItem(ctx context.Context, uid int64, bookID int64) error {
	return c.d.RemoveItem(ctx, uid, bookID)
}

func (c *cartRepository) Clear(ctx context.Context, tx *gorm.DB, uid int64) error {
	return c.d.Clear(ctx, tx, uid)
}
