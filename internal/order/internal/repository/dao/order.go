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
	"database/sql"
	"errors"
	"time"

	"github.com/ego-component/egorm"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound = errors.New("订单未找到")
	// ErrDuplicatedIdempotencyKey 幂等键冲突, 说明同一请求已经创建过订单
	ErrDuplicatedIdempotencyKey = errors.New("幂等键重复")
)

type OrderDAO interface {
	// CreateOrder 在 tx 中创建订单及其订单项
	CreateOrder(ctx context.Context, tx *gorm.DB, o Order, items []OrderItem) (int64, error)
	FindByIdempotencyKey(ctx context.Context, key string) (Order, error)
	FindBySNAndBuyerID(ctx context.Context, sn string, buyerID int64) (Order, error)
	FindItemsByOrderID(ctx context.Context, orderID int64) ([]OrderItem, error)
	List(ctx context.Context, offset, limit int, buyerID int64) ([]Order, error)
	Count(ctx context.Context, buyerID int64) (int64, error)

	SetGatewayOrderSN(ctx context.Context, tx *gorm.DB, orderID int64, gatewaySN string) error
	MarkProcessing(ctx context.Context, tx *gorm.DB, orderID int64) error

	// FindByGatewayOrderSNForUpdate 结算事务内按网关单号加行锁查找,
	// 幂等判定必须基于锁住之后读到的状态
	FindByGatewayOrderSNForUpdate(ctx context.Context, tx *gorm.DB, gatewaySN string) (Order, error)
	MarkSettled(ctx context.Context, tx *gorm.DB, orderID int64, gatewayPaymentSN, gatewaySignature string) error
	// MarkFailed 结算冲突后的尽力而为标记, 在事务之外执行
	MarkFailed(ctx context.Context, orderID int64) error

	FindAbandoned(ctx context.Context, offset, limit int, ctime int64) ([]Order, error)
	CountAbandoned(ctx context.Context, ctime int64) (int64, error)
	CloseAbandoned(ctx context.Context, orderIDs []int64) error
}

func NewOrderGORMDAO(db *egorm.Component) OrderDAO {
	return &gormOrderDAO{db: db}
}

type gormOrderDAO struct {
	db *egorm.Component
}

func (g *gormOrderDAO) CreateOrder(ctx context.Context, tx *gorm.DB, o Order, items []OrderItem) (int64, error) {
	now := time.Now().UnixMilli()
	o.Ctime, o.Utime = now, now
	if err := tx.WithContext(ctx).Create(&o).Error; err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			const uniqueIndexErrNo uint16 = 1062
			if me.Number == uniqueIndexErrNo {
				return 0, ErrDuplicatedIdempotencyKey
			}
		}
		return 0, err
	}
	for i := range items {
		items[i].OrderId = o.Id
		items[i].Ctime, items[i].Utime = now, now
	}
	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		return 0, err
	}
	return o.Id, nil
}

func (g *gormOrderDAO) FindByIdempotencyKey(ctx context.Context, key string) (Order, error) {
	var res Order
	err := g.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrOrderNotFound
	}
	return res, err
}

func (g *gormOrderDAO) FindBySNAndBuyerID(ctx context.Context, sn string, buyerID int64) (Order, error) {
	var res Order
	err := g.db.WithContext(ctx).Where("sn = ? AND buyer_id = ?", sn, buyerID).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrOrderNotFound
	}
	return res, err
}

func (g *gormOrderDAO) FindItemsByOrderID(ctx context.Context, orderID int64) ([]OrderItem, error) {
	var res []OrderItem
	err := g.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&res).Error
	return res, err
}

func (g *gormOrderDAO) List(ctx context.Context, offset, limit int, buyerID int64) ([]Order, error) {
	var res []Order
	err := g.db.WithContext(ctx).Where("buyer_id = ?", buyerID).
		Order("id DESC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (g *gormOrderDAO) Count(ctx context.Context, buyerID int64) (int64, error) {
	var res int64
	err := g.db.WithContext(ctx).Model(&Order{}).Where("buyer_id = ?", buyerID).Count(&res).Error
	return res, err
}

func (g *gormOrderDAO) SetGatewayOrderSN(ctx context.Context, tx *gorm.DB, orderID int64, gatewaySN string) error {
	return tx.WithContext(ctx).Model(&Order{}).Where("id = ?", orderID).
		Updates(map[string]any{
			"gateway_order_sn": sql.NullString{String: gatewaySN, Valid: true},
			"utime":            time.Now().UnixMilli(),
		}).Error
}

func (g *gormOrderDAO) MarkProcessing(ctx context.Context, tx *gorm.DB, orderID int64) error {
	return tx.WithContext(ctx).Model(&Order{}).Where("id = ?", orderID).
		Updates(map[string]any{
			"status": OrderStatusProcessing,
			"utime":  time.Now().UnixMilli(),
		}).Error
}

func (g *gormOrderDAO) FindByGatewayOrderSNForUpdate(ctx context.Context, tx *gorm.DB, gatewaySN string) (Order, error) {
	var res Order
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("gateway_order_sn = ?", gatewaySN).
		First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Order{}, ErrOrderNotFound
	}
	return res, err
}

func (g *gormOrderDAO) MarkSettled(ctx context.Context, tx *gorm.DB, orderID int64, gatewayPaymentSN, gatewaySignature string) error {
	return tx.WithContext(ctx).Model(&Order{}).Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_status":     PaymentStatusCompleted,
			"status":             OrderStatusProcessing,
			"gateway_payment_sn": gatewayPaymentSN,
			"gateway_signature":  gatewaySignature,
			"utime":              time.Now().UnixMilli(),
		}).Error
}

func (g *gormOrderDAO) MarkFailed(ctx context.Context, orderID int64) error {
	return g.db.WithContext(ctx).Model(&Order{}).Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_status": PaymentStatusFailed,
			"status":         OrderStatusFailed,
			"utime":          time.Now().UnixMilli(),
		}).Error
}

func (g *gormOrderDAO) FindAbandoned(ctx context.Context, offset, limit int, ctime int64) ([]Order, error) {
	var res []Order
	err := g.db.WithContext(ctx).
		Where("payment_method = ? AND payment_status = ? AND ctime < ?",
			PaymentMethodOnline, PaymentStatusPending, ctime).
		Order("id ASC").Offset(offset).Limit(limit).Find(&res).Error
	return res, err
}

func (g *gormOrderDAO) CountAbandoned(ctx context.Context, ctime int64) (int64, error) {
	var res int64
	err := g.db.WithContext(ctx).Model(&Order{}).
		Where("payment_method = ? AND payment_status = ? AND ctime < ?",
			PaymentMethodOnline, PaymentStatusPending, ctime).
		Count(&res).Error
	return res, err
}

func (g *gormOrderDAO) CloseAbandoned(ctx context.Context, orderIDs []int64) error {
	if len(orderIDs) == 0 {
		return nil
	}
	// 只有仍处于待支付的订单会被关闭, 结算与关闭竞争时以先提交者为准
	return g.db.WithContext(ctx).Model(&Order{}).
		Where("id IN ? AND payment_status = ?", orderIDs, PaymentStatusPending).
		Updates(map[string]any{
			"status":         OrderStatusCancelled,
			"payment_status": PaymentStatusFailed,
			"utime":          time.Now().UnixMilli(),
		}).Error
}

// 与 domain 中的枚举保持一致, DAO 层避免反向依赖
const (
	OrderStatusPending    = 1
	OrderStatusProcessing = 2
	OrderStatusCancelled  = 5
	OrderStatusFailed     = 6

	PaymentStatusPending   = 1
	PaymentStatusCompleted = 2
	PaymentStatusFailed    = 3

	PaymentMethodOnline = 2
)

type Order struct {
	Id             int64          `gorm:"primaryKey;autoIncrement;comment:订单自增ID"`
	SN             string         `gorm:"type:varchar(255);not null;uniqueIndex:uniq_order_sn;comment:订单序列号"`
	BuyerId        int64          `gorm:"not null;index:idx_buyer_id;comment:购买者ID"`
	IdempotencyKey sql.NullString `gorm:"type:varchar(255);unique;comment:客户端幂等键"`

	Subtotal       int64 `gorm:"not null;comment:小计;单位为分"`
	DiscountAmount int64 `gorm:"not null;default:0;comment:优惠金额;单位为分"`
	HandlingFee    int64 `gorm:"not null;default:0;comment:手续费;单位为分"`
	DeliveryFee    int64 `gorm:"not null;default:0;comment:配送费;单位为分"`
	FinalAmount    int64 `gorm:"not null;comment:实付金额;单位为分"`

	AppliedDiscountId int64 `gorm:"not null;default:0;comment:使用的优惠券ID, 0表示未使用"`

	PaymentMethod uint8 `gorm:"type:tinyint unsigned;not null;comment:支付方式 1=货到付款 2=在线支付"`
	Status        uint8 `gorm:"type:tinyint unsigned;not null;default:1;comment:履约状态 1=待处理 2=处理中 3=已发货 4=已送达 5=已取消 6=已失败"`
	PaymentStatus uint8 `gorm:"type:tinyint unsigned;not null;default:1;comment:支付状态 1=待支付 2=已完成 3=已失败"`

	GatewayOrderSN   sql.NullString `gorm:"type:varchar(255);unique;comment:网关侧支付单号"`
	GatewayPaymentSN string         `gorm:"type:varchar(255);not null;default:'';comment:网关侧支付流水号"`
	GatewaySignature string         `gorm:"type:varchar(512);not null;default:'';comment:回调签名存档"`

	Ctime int64 `gorm:"index:idx_ctime"`
	Utime int64
}

type OrderItem struct {
	Id        int64  `gorm:"primaryKey;autoIncrement;comment:订单项自增ID"`
	OrderId   int64  `gorm:"not null;index:idx_order_id;comment:订单自增ID"`
	BookId    int64  `gorm:"not null;index:idx_book_id;comment:图书自增ID"`
	SellerId  int64  `gorm:"not null;comment:卖家ID"`
	Title     string `gorm:"type:varchar(512);not null;comment:下单时的书名快照"`
	UnitPrice int64  `gorm:"not null;comment:下单时的单价快照;单位为分"`
	Quantity  int64  `gorm:"not null;comment:购买数量"`
	Ctime     int64
	Utime     int64
}
