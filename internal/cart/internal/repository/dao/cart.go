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

package dao

import (
	"context"
	"errors"
	"time"

	"github.com/ego-component/egorm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCartNotFound = errors.New("购物车未找到")

type CartDAO interface {
	FindByUID(ctx context.Context, uid int64) (Cart, []CartItem, error)
	UpsertItem(ctx context.Context, uid int64, bookID int64, quantity int64) error
	RemoveItem(ctx context.Context, uid int64, bookID int64) error
	// Clear 在 tx 中清空购物车, 结算路径只允许调用一次
	Clear(ctx context.Context, tx *gorm.DB, uid int64) error
}

func NewCartGORMDAO(db *egorm.Component) CartDAO {
	return &gormCartDAO{db: db}
}

type gormCartDAO struct {
	db *egorm.Component
}

func (g *gormCartDAO) FindByUID(ctx context.Context, uid int64) (Cart, []CartItem, error) {
	var c Cart
	err := g.db.WithContext(ctx).Where("uid = ?", uid).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Cart{}, nil, ErrCartNotFound
	}
	if err != nil {
		return Cart{}, nil, err
	}
	var items []CartItem
	err = g.db.WithContext(ctx).Where("cart_id = ?", c.Id).Order("id ASC").Find(&items).Error
	if err != nil {
		return Cart{}, nil, err
	}
	return c, items, nil
}

func (g *gormCartDAO) UpsertItem(ctx context.Context, uid int64, bookID int64, quantity int64) error {
	now := time.Now().UnixMilli()
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart := Cart{UID: uid, Ctime: now, Utime: now}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoUpdates: clause.Assignments(map[string]any{"utime": now}),
		}).Create(&cart).Error
		if err != nil {
			return err
		}
		if cart.Id == 0 {
			if err = tx.Where("uid = ?", uid).First(&cart).Error; err != nil {
				return err
			}
		}
		item := CartItem{CartId: cart.Id, BookId: bookID, Quantity: quantity, Ctime: now, Utime: now}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "book_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("`quantity` + ?", quantity),
				"utime":    now,
			}),
		}).Create(&item).Error
	})
}

func (g *gormCartDAO) RemoveItem(ctx context.Context, uid int64, bookID int64) error {
	var c Cart
	err := g.db.WithContext(ctx).Where("uid = ?", uid).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCartNotFound
	}
	if err != nil {
		return err
	}
	return g.db.WithContext(ctx).
		Where("cart_id = ? AND book_id = ?", c.Id, bookID).
		Delete(&CartItem{}).Error
}

func (g *gormCartDAO) Clear(ctx context.Context, tx *gorm.DB, uid int64) error {
	var c Cart
	err := tx.WithContext(ctx).Where("uid = ?", uid).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 没有购物车等同于已清空
		return nil
	}
	if err != nil {
		return err
	}
	return tx.WithContext(ctx).Where("cart_id = ?", c.Id).Delete(&CartItem{}).Error
}

type Cart struct {
	Id    int64 `gorm:"primaryKey;autoIncrement;comment:购物车自增ID"`
	UID   int64 `gorm:"column:uid;not null;uniqueIndex:uniq_cart_uid;comment:用户ID, 每个用户一个购物车"`
	Ctime int64
	Utime int64
}

type CartItem struct {
	Id       int64 `gorm:"primaryKey;autoIncrement;comment:购物车项自增ID"`
	CartId   int64 `gorm:"not null;uniqueIndex:uniq_cart_book;comment:购物车自增ID"`
	BookId   int64 `gorm:"not null;uniqueIndex:uniq_cart_book;comment:图书自增ID"`
	Quantity int64 `gorm:"not null;comment:数量"`
	Ctime    int64
	Utime    int64
}
