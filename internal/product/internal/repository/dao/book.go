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
)

var (
	ErrBookNotFound      = errors.New("图书未找到")
	ErrInsufficientStock = errors.New("图书库存不足")
)

type BookDAO interface {
	FindByID(ctx context.Context, id int64) (Book, error)
	FindByIDs(ctx context.Context, ids []int64) ([]Book, error)
	// DecrementStock 在 tx 中执行 stock >= n 守护下的单条原子扣减
	DecrementStock(ctx context.Context, tx *gorm.DB, id int64, n int64) error
}

func NewBookGORMDAO(db *egorm.Component) BookDAO {
	return &gormBookDAO{db: db}
}

type gormBookDAO struct {
	db *egorm.Component
}

func (g *gormBookDAO) FindByID(ctx context.Context, id int64) (Book, error) {
	var res Book
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Book{}, ErrBookNotFound
	}
	return res, err
}

func (g *gormBookDAO) FindByIDs(ctx context.Context, ids []int64) ([]Book, error) {
	var res []Book
	err := g.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

// DecrementStock 库存是被多个结算方竞争的资源,
// 必须用单条条件 UPDATE 扣减, 不能先读后写
func (g *gormBookDAO) DecrementStock(ctx context.Context, tx *gorm.DB, id int64, n int64) error {
	res := tx.WithContext(ctx).Model(&Book{}).
		Where("id = ? AND stock >= ?", id, n).
		Updates(map[string]any{
			"stock": gorm.Expr("`stock` - ?", n),
			"utime": time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

type Book struct {
	Id       int64  `gorm:"primaryKey;autoIncrement;comment:图书自增ID"`
	SN       string `gorm:"type:varchar(255);not null;uniqueIndex:uniq_book_sn;comment:图书序列号"`
	Title    string `gorm:"type:varchar(512);not null;comment:书名"`
	Author   string `gorm:"type:varchar(255);not null;comment:作者"`
	Price    int64  `gorm:"not null;comment:单价;单位为分, 999表示9.99元"`
	Stock    int64  `gorm:"not null;default:0;comment:库存数量"`
	SellerId int64  `gorm:"not null;index:idx_seller_id;comment:卖家ID"`
	Ctime    int64
	Utime    int64
}
