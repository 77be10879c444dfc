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
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrDiscountNotFound = errors.New("优惠券未找到")
	// ErrUsesExhausted 全局使用次数已达上限
	ErrUsesExhausted = errors.New("优惠券使用次数已耗尽")
	// ErrUserUsesExhausted 该用户使用次数已达上限
	ErrUserUsesExhausted = errors.New("用户优惠券使用次数已耗尽")
)

type DiscountDAO interface {
	Create(ctx context.Context, d Discount) (int64, error)
	FindByCode(ctx context.Context, code string) (Discount, error)
	UserUsedCount(ctx context.Context, discountID int64, uid int64) (int64, error)
	// RecordUsage 在 tx 中原子地递增全局计数和用户计数,
	// 任何一个越过上限都会返回错误, 由调用方回滚结算事务
	RecordUsage(ctx context.Context, tx *gorm.DB, discountID int64, uid int64) error
}

func NewDiscountGORMDAO(db *egorm.Component) DiscountDAO {
	return &gormDiscountDAO{db: db}
}

type gormDiscountDAO struct {
	db *egorm.Component
}

func (g *gormDiscountDAO) Create(ctx context.Context, d Discount) (int64, error) {
	now := time.Now().UnixMilli()
	d.Ctime, d.Utime = now, now
	err := g.db.WithContext(ctx).Create(&d).Error
	return d.Id, err
}

func (g *gormDiscountDAO) FindByCode(ctx context.Context, code string) (Discount, error) {
	var res Discount
	err := g.db.WithContext(ctx).Where("code = ?", code).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Discount{}, ErrDiscountNotFound
	}
	return res, err
}

func (g *gormDiscountDAO) UserUsedCount(ctx context.Context, discountID int64, uid int64) (int64, error) {
	var usage DiscountUsage
	err := g.db.WithContext(ctx).
		Where("discount_id = ? AND uid = ?", discountID, uid).
		First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return usage.UsedCount, err
}

func (g *gormDiscountDAO) RecordUsage(ctx context.Context, tx *gorm.DB, discountID int64, uid int64) error {
	now := time.Now().UnixMilli()

	// 全局计数: 带 times_used < max_uses 守护的单条原子递增
	res := tx.WithContext(ctx).Model(&Discount{}).
		Where("id = ? AND times_used < max_uses", discountID).
		Updates(map[string]any{
			"times_used": gorm.Expr("`times_used` + 1"),
			"utime":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUsesExhausted
	}

	// 用户计数: 先尝试带守护的递增, 没有记录时再插入首条
	res = tx.WithContext(ctx).Model(&DiscountUsage{}).
		Where("discount_id = ? AND uid = ? AND used_count < (?)",
			discountID, uid,
			tx.Session(&gorm.Session{NewDB: true}).Model(&Discount{}).
				Select("max_uses_per_user").Where("id = ?", discountID),
		).
		Updates(map[string]any{
			"used_count": gorm.Expr("`used_count` + 1"),
			"utime":      now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	usage := DiscountUsage{DiscountId: discountID, UID: uid, UsedCount: 1, Ctime: now, Utime: now}
	if err := tx.WithContext(ctx).Create(&usage).Error; err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			const uniqueIndexErrNo uint16 = 1062
			if me.Number == uniqueIndexErrNo {
				// 记录已存在但守护更新没有命中, 说明该用户已达上限
				return ErrUserUsesExhausted
			}
		}
		return err
	}
	return nil
}

type Discount struct {
	Id             int64  `gorm:"primaryKey;autoIncrement;comment:优惠券自增ID"`
	Code           string `gorm:"type:varchar(64);not null;uniqueIndex:uniq_discount_code;comment:券码, 统一大写"`
	Description    string `gorm:"type:varchar(512);not null;comment:描述"`
	Type           uint8  `gorm:"type:tinyint unsigned;not null;comment:类型 1=百分比 2=固定金额 3=免配送费"`
	Value          int64  `gorm:"not null;comment:百分比或金额;金额单位为分"`
	MinCartValue   int64  `gorm:"not null;default:0;comment:可用的最低小计;单位为分"`
	MaxUses        int64  `gorm:"not null;comment:全局最大使用次数"`
	MaxUsesPerUser int64  `gorm:"not null;comment:单用户最大使用次数"`
	TimesUsed      int64  `gorm:"not null;default:0;comment:已使用次数"`
	Active         bool   `gorm:"not null;default:true;comment:是否启用"`
	StartAt        int64  `gorm:"not null;default:0;comment:生效时间,UTC Unix毫秒数,0表示无界"`
	EndAt          int64  `gorm:"not null;default:0;comment:失效时间,UTC Unix毫秒数,0表示无界"`
	Ctime          int64
	Utime          int64
}

type DiscountUsage struct {
	Id         int64 `gorm:"primaryKey;autoIncrement;comment:使用记录自增ID"`
	DiscountId int64 `gorm:"not null;uniqueIndex:uniq_discount_uid;comment:优惠券自增ID"`
	UID        int64 `gorm:"column:uid;not null;uniqueIndex:uniq_discount_uid;comment:用户ID"`
	UsedCount  int64 `gorm:"not null;default:0;comment:该用户已使用次数"`
	Ctime      int64
	Utime      int64
}
