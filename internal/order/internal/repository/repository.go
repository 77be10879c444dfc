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
	"database/sql"

	"github.com/ecodeclub/bookstore/internal/order/internal/domain"
	"github.com/ecodeclub/bookstore/internal/order/internal/repository/dao"
	"github.com/ecodeclub/ekit/slice"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound            = dao.ErrOrderNotFound
	ErrDuplicatedIdempotencyKey = dao.ErrDuplicatedIdempotencyKey
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx *gorm.DB, o domain.Order) (int64, error)
	FindByIdempotencyKey(ctx context.Context, key string) (domain.Order, error)
	FindBySNAndBuyerID(ctx context.Context, sn string, buyerID int64) (domain.Order, error)
	List(ctx context.Context, offset, limit int, buyerID int64) ([]domain.Order, error)
	Count(ctx context.Context, buyerID int64) (int64, error)

	SetGatewayOrderSN(ctx context.Context, tx *gorm.DB, orderID int64, gatewaySN string) error
	MarkProcessing(ctx context.Context, tx *gorm.DB, orderID int64) error

	FindByGatewayOrderSNForUpdate(ctx context.Context, tx *gorm.DB, gatewaySN string) (domain.Order, error)
	MarkSettled(ctx context.Context, tx *gorm.DB, orderID int64, gatewayPaymentSN, gatewaySignature string) error
	MarkFailed(ctx context.Context, orderID int64) error

	FindAbandoned(ctx context.Context, offset, limit int, ctime int64) ([]domain.Order, error)
	CountAbandoned(ctx context.Context, ctime int64) (int64, error)
	CloseAbandoned(ctx context.Context, orderIDs []int64) error
}

func NewOrderRepository(d dao.OrderDAO) OrderRepository {
	return &orderRepository{dao: d}
}

type orderRepository struct {
	dao dao.OrderDAO
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *gorm.DB, o domain.Order) (int64, error) {
	entity, items := r.toEntity(o)
	return r.dao.CreateOrder(ctx, tx, entity, items)
}

func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, key string) (domain.Order, error) {
	o, err := r.dao.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return domain.Order{}, err
	}
	return r.fill(ctx, o)
}

func (r *orderRepository) FindBySNAndBuyerID(ctx context.Context, sn string, buyerID int64) (domain.Order, error) {
	o, err := r.dao.FindBySNAndBuyerID(ctx, sn, buyerID)
	if err != nil {
		return domain.Order{}, err
	}
	return r.fill(ctx, o)
}

func (r *orderRepository) List(ctx context.Context, offset, limit int, buyerID int64) ([]domain.Order, error) {
	os, err := r.dao.List(ctx, offset, limit, buyerID)
	if err != nil {
		return nil, err
	}
	return slice.Map(os, func(_ int, src dao.Order) domain.Order {
		return r.toDomain(src, nil)
	}), nil
}

func (r *orderRepository) Count(ctx context.Context, buyerID int64) (int64, error) {
	return r.dao.Count(ctx, buyerID)
}

func (r *orderRepository) SetGatewayOrderSN(ctx context.Context, tx *gorm.DB, orderID int64, gatewaySN string) error {
	return r.dao.SetGatewayOrderSN(ctx, tx, orderID, gatewaySN)
}

func (r *orderRepository) MarkProcessing(ctx context.Context, tx *gorm.DB, orderID int64) error {
	return r.dao.MarkProcessing(ctx, tx, orderID)
}

func (r *orderRepository) FindByGatewayOrderSNForUpdate(ctx context.Context, tx *gorm.DB, gatewaySN string) (domain.Order, error) {
	o, err := r.dao.FindByGatewayOrderSNForUpdate(ctx, tx, gatewaySN)
	if err != nil {
		return domain.Order{}, err
	}
	items, err := r.dao.FindItemsByOrderID(ctx, o.Id)
	if err != nil {
		return domain.Order{}, err
	}
	return r.toDomain(o, items), nil
}

func (r *orderRepository) MarkSettled(ctx context.Context, tx *gorm.DB, orderID int64, gatewayPaymentSN, gatewaySignature string) error {
	return r.dao.MarkSettled(ctx, tx, orderID, gatewayPaymentSN, gatewaySignature)
}

func (r *orderRepository) MarkFailed(ctx context.Context, orderID int64) error {
	return r.dao.MarkFailed(ctx, orderID)
}

func (r *orderRepository) FindAbandoned(ctx context.Context, offset, limit int, ctime int64) ([]domain.Order, error) {
	os, err := r.dao.FindAbandoned(ctx, offset, limit, ctime)
	if err != nil {
		return nil, err
	}
	return slice.Map(os, func(_ int, src dao.Order) domain.Order {
		return r.toDomain(src, nil)
	}), nil
}

func (r *orderRepository) CountAbandoned(ctx context.Context, ctime int64) (int64, error) {
	return r.dao.CountAbandoned(ctx, ctime)
}

func (r *orderRepository) CloseAbandoned(ctx context.Context, orderIDs []int64) error {
	return r.dao.CloseAbandoned(ctx, orderIDs)
}

func (r *orderRepository) fill(ctx context.Context, o dao.Order) (domain.Order, error) {
	items, err := r.dao.FindItemsByOrderID(ctx, o.Id)
	if err != nil {
		return domain.Order{}, err
	}
	return r.toDomain(o, items), nil
}

func (r *orderRepository) toEntity(o domain.Order) (dao.Order, []dao.OrderItem) {
	entity := dao.Order{
		SN:                o.SN,
		BuyerId:           o.BuyerID,
		Subtotal:          o.Subtotal,
		DiscountAmount:    o.DiscountAmount,
		HandlingFee:       o.HandlingFee,
		DeliveryFee:       o.DeliveryFee,
		FinalAmount:       o.FinalAmount,
		AppliedDiscountId: o.AppliedDiscountID,
		PaymentMethod:     o.PaymentMethod.ToUint8(),
		Status:            o.Status.ToUint8(),
		PaymentStatus:     o.PaymentStatus.ToUint8(),
		GatewayPaymentSN:  o.GatewayPaymentSN,
		GatewaySignature:  o.GatewaySignature,
	}
	if o.IdempotencyKey != "" {
		entity.IdempotencyKey = sql.NullString{String: o.IdempotencyKey, Valid: true}
	}
	if o.GatewayOrderSN != "" {
		entity.GatewayOrderSN = sql.NullString{String: o.GatewayOrderSN, Valid: true}
	}
	items := slice.Map(o.Items, func(_ int, src domain.Item) dao.OrderItem {
		return dao.OrderItem{
			BookId:    src.BookID,
			SellerId:  src.SellerID,
			Title:     src.Title,
			UnitPrice: src.UnitPrice,
			Quantity:  src.Quantity,
		}
	})
	return entity, items
}

func (r *orderRepository) toDomain(o dao.Order, items []dao.OrderItem) domain.Order {
	return domain.Order{
		ID:                o.Id,
		SN:                o.SN,
		BuyerID:           o.BuyerId,
		IdempotencyKey:    o.IdempotencyKey.String,
		Subtotal:          o.Subtotal,
		DiscountAmount:    o.DiscountAmount,
		HandlingFee:       o.HandlingFee,
		DeliveryFee:       o.DeliveryFee,
		FinalAmount:       o.FinalAmount,
		AppliedDiscountID: o.AppliedDiscountId,
		PaymentMethod:     domain.PaymentMethod(o.PaymentMethod),
		Status:            domain.OrderStatus(o.Status),
		PaymentStatus:     domain.PaymentStatus(o.PaymentStatus),
		GatewayOrderSN:    o.GatewayOrderSN.String,
		GatewayPaymentSN:  o.GatewayPaymentSN,
		GatewaySignature:  o.GatewaySignature,
		Items: slice.Map(items, func(_ int, src dao.OrderItem) domain.Item {
			return domain.Item{
				BookID:    src.BookId,
				SellerID:  src.SellerId,
				Title:     src.Title,
				Quantity:  src.Quantity,
				UnitPrice: src.UnitPrice,
			}
		}),
		Ctime: o.Ctime,
		Utime: o.Utime,
	}
}
