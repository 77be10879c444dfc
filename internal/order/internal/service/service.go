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
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/bookstore/internal/cart"
	"github.com/ecodeclub/bookstore/internal/marketing"
	"github.com/ecodeclub/bookstore/internal/order/internal/domain"
	"github.com/ecodeclub/bookstore/internal/order/internal/event"
	"github.com/ecodeclub/bookstore/internal/order/internal/repository"
	"github.com/ecodeclub/bookstore/internal/payment"
	"github.com/ecodeclub/bookstore/internal/pkg/sequencenumber"
	"github.com/ecodeclub/bookstore/internal/product"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ego-component/egorm"
	"github.com/gotomicro/ego/core/elog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = repository.ErrOrderNotFound
	ErrEmptyCart     = errors.New("购物车为空")
	// ErrInvalidPaymentMethod 未知的支付方式
	ErrInvalidPaymentMethod = errors.New("支付方式非法")
	// ErrSettlementConflict 结算事务因库存或优惠券配额冲突而回滚,
	// 订单已被标记为失败, 回调方不应该再重试
	ErrSettlementConflict = errors.New("结算冲突")
)

type InitiateRequest struct {
	BuyerID        int64
	IdempotencyKey string
	PaymentMethod  domain.PaymentMethod
	DiscountCode   string
}

type Config struct {
	Currency string    `yaml:"currency"`
	Fees     FeeConfig `yaml:"fees"`
}

type Service interface {
	// Initiate 从购物车创建订单。携带相同幂等键的重复请求返回首次创建的订单
	Initiate(ctx context.Context, req InitiateRequest) (domain.Order, error)
	FindOrder(ctx context.Context, orderSN string, buyerID int64) (domain.Order, error)
	ListOrders(ctx context.Context, offset, limit int, buyerID int64) ([]domain.Order, int64, error)
	// Settle 处理网关的支付捕获回调, 在单个事务内完成
	// 标记已支付、扣减库存、清空购物车、记录优惠券用量
	Settle(ctx context.Context, evt payment.WebhookEvent) error
	ListAbandonedOrders(ctx context.Context, offset, limit int, ctime int64) ([]domain.Order, int64, error)
	CloseAbandonedOrders(ctx context.Context, orderIDs []int64) error
}

func NewService(repo repository.OrderRepository,
	db *egorm.Component,
	cartSvc cart.Service,
	productSvc product.Service,
	marketingSvc marketing.Service,
	gateway payment.GatewayClient,
	snGenerator *sequencenumber.Generator,
	producer event.OrderEventProducer,
	calculator *PricingCalculator,
	cfg Config,
) Service {
	return &service{
		repo:         repo,
		db:           db,
		cartSvc:      cartSvc,
		productSvc:   productSvc,
		marketingSvc: marketingSvc,
		gateway:      gateway,
		snGenerator:  snGenerator,
		producer:     producer,
		calculator:   calculator,
		cfg:          cfg,
		logger:       elog.DefaultLogger,
	}
}

type service struct {
	repo         repository.OrderRepository
	db           *egorm.Component
	cartSvc      cart.Service
	productSvc   product.Service
	marketingSvc marketing.Service
	gateway      payment.GatewayClient
	snGenerator  *sequencenumber.Generator
	producer     event.OrderEventProducer
	calculator   *PricingCalculator
	cfg          Config
	logger       *elog.Component
}

func (s *service) Initiate(ctx context.Context, req InitiateRequest) (domain.Order, error) {
	if !req.PaymentMethod.Valid() {
		return domain.Order{}, ErrInvalidPaymentMethod
	}

	if req.IdempotencyKey != "" {
		o, err := s.repo.FindByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return o, nil
		}
		if !errors.Is(err, repository.ErrOrderNotFound) {
			return domain.Order{}, fmt.Errorf("查找幂等订单失败: %w", err)
		}
	}

	items, err := s.buildItems(ctx, req.BuyerID)
	if err != nil {
		return domain.Order{}, err
	}

	var discount *marketing.Discount
	if req.DiscountCode != "" {
		var subtotal int64
		for _, it := range items {
			subtotal += it.UnitPrice * it.Quantity
		}
		d, err := s.marketingSvc.Validate(ctx, req.DiscountCode, req.BuyerID, subtotal)
		if err != nil {
			return domain.Order{}, err
		}
		discount = &d
	}

	pricing := s.calculator.Calculate(items, discount)

	sn, err := s.snGenerator.Generate(req.BuyerID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("生成订单序列号失败: %w", err)
	}

	order := domain.Order{
		SN:             sn,
		BuyerID:        req.BuyerID,
		IdempotencyKey: req.IdempotencyKey,
		Items:          items,
		Subtotal:       pricing.Subtotal,
		DiscountAmount: pricing.DiscountAmount,
		HandlingFee:    pricing.HandlingFee,
		DeliveryFee:    pricing.DeliveryFee,
		FinalAmount:    pricing.FinalAmount,
		PaymentMethod:  req.PaymentMethod,
		Status:         domain.OrderStatusPending,
		PaymentStatus:  domain.PaymentStatusPending,
	}
	if discount != nil {
		order.AppliedDiscountID = discount.ID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		oid, err := s.repo.CreateOrder(ctx, tx, order)
		if err != nil {
			return err
		}
		order.ID = oid

		if req.PaymentMethod == domain.PaymentMethodCOD {
			// 货到付款没有支付环节, 下单即占用库存并推进履约
			for _, it := range order.Items {
				if err := s.productSvc.DecrementStock(ctx, tx, it.BookID, it.Quantity); err != nil {
					return fmt.Errorf("扣减库存失败: bookID=%d: %w", it.BookID, err)
				}
			}
			if err := s.cartSvc.Clear(ctx, tx, req.BuyerID); err != nil {
				return fmt.Errorf("清空购物车失败: %w", err)
			}
			if order.AppliedDiscountID != 0 {
				if err := s.marketingSvc.RecordUsage(ctx, tx, order.AppliedDiscountID, req.BuyerID); err != nil {
					return err
				}
			}
			if err := s.repo.MarkProcessing(ctx, tx, oid); err != nil {
				return err
			}
			order.Status = domain.OrderStatusProcessing
			return nil
		}

		// 在线支付: 网关下单失败则整个订单回滚, 不留下无法支付的待支付单
		gatewayOrder, err := s.gateway.CreateOrder(ctx, order.FinalAmount, s.cfg.Currency, order.SN)
		if err != nil {
			return fmt.Errorf("网关创建支付单失败: %w", err)
		}
		if err := s.repo.SetGatewayOrderSN(ctx, tx, oid, gatewayOrder.SN); err != nil {
			return err
		}
		order.GatewayOrderSN = gatewayOrder.SN
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatedIdempotencyKey) {
			// 并发重复请求, 另一个请求先落库, 以它为准
			return s.repo.FindByIdempotencyKey(ctx, req.IdempotencyKey)
		}
		return domain.Order{}, err
	}
	return order, nil
}

func (s *service) buildItems(ctx context.Context, buyerID int64) ([]domain.Item, error) {
	c, err := s.cartSvc.FindByUID(ctx, buyerID)
	if err != nil && !errors.Is(err, cart.ErrCartNotFound) {
		return nil, fmt.Errorf("获取购物车失败: %w", err)
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	bookIDs := slice.Map(c.Items, func(_ int, src cart.Item) int64 {
		return src.BookID
	})
	books, err := s.productSvc.FindByIDs(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("获取商品失败: %w", err)
	}

	items := make([]domain.Item, 0, len(c.Items))
	for _, ci := range c.Items {
		book, ok := slice.Find(books, func(src product.Book) bool {
			return src.ID == ci.BookID
		})
		if !ok {
			return nil, fmt.Errorf("%w: bookID=%d", product.ErrBookNotFound, ci.BookID)
		}
		// 下单前的预检, 并发下的最终裁决仍在扣减库存的条件更新上
		if book.Stock < ci.Quantity {
			return nil, fmt.Errorf("%w: %q", product.ErrInsufficientStock, book.Title)
		}
		items = append(items, domain.Item{
			BookID:    book.ID,
			SellerID:  book.SellerID,
			Title:     book.Title,
			Quantity:  ci.Quantity,
			UnitPrice: book.Price,
		})
	}
	return items, nil
}

func (s *service) FindOrder(ctx context.Context, orderSN string, buyerID int64) (domain.Order, error) {
	return s.repo.FindBySNAndBuyerID(ctx, orderSN, buyerID)
}

func (s *service) ListOrders(ctx context.Context, offset, limit int, buyerID int64) ([]domain.Order, int64, error) {
	var (
		eg    errgroup.Group
		os    []domain.Order
		total int64
	)
	eg.Go(func() error {
		var err error
		os, err = s.repo.List(ctx, offset, limit, buyerID)
		return err
	})

	eg.Go(func() error {
		var err error
		total, err = s.repo.Count(ctx, buyerID)
		return err
	})
	return os, total, eg.Wait()
}

func (s *service) Settle(ctx context.Context, evt payment.WebhookEvent) error {
	var (
		settled  domain.Order
		orderID  int64
		replayed bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.repo.FindByGatewayOrderSNForUpdate(ctx, tx, evt.GatewayOrderSN)
		if err != nil {
			return err
		}
		orderID = o.ID
		if o.PaymentStatus == domain.PaymentStatusCompleted {
			// 网关重复投递, 首次结算已经生效
			replayed = true
			return nil
		}
		if err := s.repo.MarkSettled(ctx, tx, o.ID, evt.GatewayPaymentSN, evt.Signature); err != nil {
			return err
		}
		for _, it := range o.Items {
			if err := s.productSvc.DecrementStock(ctx, tx, it.BookID, it.Quantity); err != nil {
				return fmt.Errorf("扣减库存失败: bookID=%d: %w", it.BookID, err)
			}
		}
		if err := s.cartSvc.Clear(ctx, tx, o.BuyerID); err != nil {
			return fmt.Errorf("清空购物车失败: %w", err)
		}
		if o.AppliedDiscountID != 0 {
			if err := s.marketingSvc.RecordUsage(ctx, tx, o.AppliedDiscountID, o.BuyerID); err != nil {
				return err
			}
		}
		o.PaymentStatus = domain.PaymentStatusCompleted
		o.Status = domain.OrderStatusProcessing
		settled = o
		return nil
	})
	if err != nil {
		if s.isSettlementConflict(err) {
			s.markFailed(orderID)
			return fmt.Errorf("%w: %w", ErrSettlementConflict, err)
		}
		return err
	}
	// 重复投递只确认不重发事件, 避免下游重复处理
	if !replayed {
		s.notifySettled(settled)
	}
	return nil
}

// isSettlementConflict 区分业务冲突与基础设施故障:
// 前者重试也不会成功, 后者应让网关按原样重新投递
func (s *service) isSettlementConflict(err error) bool {
	return errors.Is(err, product.ErrInsufficientStock) ||
		errors.Is(err, marketing.ErrCouponExhausted) ||
		errors.Is(err, marketing.ErrCouponUserExhausted)
}

// markFailed 尽力而为, 失败只记日志: 订单留在待支付状态,
// 等待被关闭废弃订单的任务兜底
func (s *service) markFailed(orderID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.repo.MarkFailed(ctx, orderID); err != nil {
		s.logger.Error("标记订单结算失败状态失败",
			elog.FieldErr(err),
			elog.Int64("orderID", orderID))
	}
}

func (s *service) notifySettled(o domain.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	evt := event.OrderSettledEvent{
		OrderSN:       o.SN,
		BuyerID:       o.BuyerID,
		FinalAmount:   o.FinalAmount,
		PaymentMethod: o.PaymentMethod.ToUint8(),
	}
	if err := s.producer.Produce(ctx, evt); err != nil {
		s.logger.Error("发送订单结算事件失败",
			elog.FieldErr(err),
			elog.String("orderSN", o.SN))
	}
}

func (s *service) ListAbandonedOrders(ctx context.Context, offset, limit int, ctime int64) ([]domain.Order, int64, error) {
	var (
		eg    errgroup.Group
		os    []domain.Order
		total int64
	)
	eg.Go(func() error {
		var err error
		os, err = s.repo.FindAbandoned(ctx, offset, limit, ctime)
		return err
	})

	eg.Go(func() error {
		var err error
		total, err = s.repo.CountAbandoned(ctx, ctime)
		return err
	})
	return os, total, eg.Wait()
}

func (s *service) CloseAbandonedOrders(ctx context.Context, orderIDs []int64) error {
	return s.repo.CloseAbandoned(ctx, orderIDs)
}
