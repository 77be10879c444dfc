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

package web

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecodeclub/bookstore/internal/marketing"
	"github.com/ecodeclub/bookstore/internal/order/internal/domain"
	"github.com/ecodeclub/bookstore/internal/order/internal/service"
	"github.com/ecodeclub/bookstore/internal/product"
	"github.com/ecodeclub/ecache"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
)

var _ ginx.Handler = &Handler{}

type Handler struct {
	svc   service.Service
	cache ecache.Cache
}

func NewHandler(svc service.Service, cache ecache.Cache) *Handler {
	return &Handler{svc: svc, cache: cache}
}

func (h *Handler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/order")
	g.POST("/checkout", ginx.BS[CheckoutReq](h.Checkout))
	g.POST("/list", ginx.BS[ListOrdersReq](h.ListOrders))
	g.POST("/detail", ginx.BS[RetrieveOrderDetailReq](h.RetrieveOrderDetail))
}

func (h *Handler) PublicRoutes(_ *gin.Engine) {}

// Checkout 从购物车创建订单。语义上的幂等由 Idempotency-Key 请求头保证,
// 请求体里的 RequestID 只用来快速拦截连击
func (h *Handler) Checkout(ctx *ginx.Context, req CheckoutReq, sess session.Session) (ginx.Result, error) {
	if err := h.checkRequestID(ctx.Request.Context(), req.RequestID); err != nil {
		return systemErrorResult, fmt.Errorf("请求ID错误: %w", err)
	}

	order, err := h.svc.Initiate(ctx.Request.Context(), service.InitiateRequest{
		BuyerID:        sess.Claims().Uid,
		IdempotencyKey: ctx.GetHeader("Idempotency-Key"),
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		DiscountCode:   req.CouponCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart),
			errors.Is(err, service.ErrInvalidPaymentMethod):
			return invalidInputResult, fmt.Errorf("创建订单失败: %w", err)
		case errors.Is(err, product.ErrInsufficientStock):
			return insufficientStockResult, fmt.Errorf("创建订单失败: %w", err)
		case isCouponError(err):
			return couponUnusableResult, fmt.Errorf("创建订单失败: %w", err)
		default:
			return systemErrorResult, fmt.Errorf("创建订单失败: %w", err)
		}
	}
	return ginx.Result{
		Data: CheckoutResp{Order: toOrderVO(order, true)},
	}, nil
}

func (h *Handler) ListOrders(ctx *ginx.Context, req ListOrdersReq, sess session.Session) (ginx.Result, error) {
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
	orders, total, err := h.svc.ListOrders(ctx.Request.Context(), req.Offset, req.Limit, sess.Claims().Uid)
	if err != nil {
		return systemErrorResult, fmt.Errorf("获取订单列表失败: %w", err)
	}
	return ginx.Result{
		Data: ListOrdersResp{
			Total: total,
			Orders: slice.Map(orders, func(idx int, src domain.Order) Order {
				return toOrderVO(src, false)
			}),
		},
	}, nil
}

func (h *Handler) RetrieveOrderDetail(ctx *ginx.Context, req RetrieveOrderDetailReq, sess session.Session) (ginx.Result, error) {
	order, err := h.svc.FindOrder(ctx.Request.Context(), req.SN, sess.Claims().Uid)
	if err != nil {
		return systemErrorResult, fmt.Errorf("获取订单详情失败: %w", err)
	}
	return ginx.Result{
		Data: RetrieveOrderDetailResp{Order: toOrderVO(order, true)},
	}, nil
}

func (h *Handler) checkRequestID(ctx context.Context, requestID string) error {
	if requestID == "" {
		return fmt.Errorf("请求ID为空")
	}

	key := h.checkoutRequestKey(requestID)
	val := h.cache.Get(ctx, key)
	if !val.KeyNotFound() {
		return fmt.Errorf("重复请求")
	}
	if err := h.cache.Set(ctx, key, requestID, 0); err != nil {
		return fmt.Errorf("缓存请求ID失败: %w", err)
	}
	return nil
}

func (h *Handler) checkoutRequestKey(requestID string) string {
	return fmt.Sprintf("order:checkout:%s", requestID)
}

func isCouponError(err error) bool {
	return errors.Is(err, marketing.ErrCouponNotFound) ||
		errors.Is(err, marketing.ErrCouponInactive) ||
		errors.Is(err, marketing.ErrCouponNotYetActive) ||
		errors.Is(err, marketing.ErrCouponExpired) ||
		errors.Is(err, marketing.ErrBelowMinCartValue) ||
		errors.Is(err, marketing.ErrCouponExhausted) ||
		errors.Is(err, marketing.ErrCouponUserExhausted)
}

func toOrderVO(o domain.Order, withItems bool) Order {
	vo := Order{
		SN:             o.SN,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		HandlingFee:    o.HandlingFee,
		DeliveryFee:    o.DeliveryFee,
		FinalAmount:    o.FinalAmount,
		PaymentMethod:  o.PaymentMethod.ToUint8(),
		Status:         o.Status.ToUint8(),
		PaymentStatus:  o.PaymentStatus.ToUint8(),
		GatewayOrderSN: o.GatewayOrderSN,
		Ctime:          o.Ctime,
	}
	if withItems {
		vo.Items = slice.Map(o.Items, func(idx int, src domain.Item) OrderItem {
			return OrderItem{
				BookID:    src.BookID,
				Title:     src.Title,
				Quantity:  src.Quantity,
				UnitPrice: src.UnitPrice,
			}
		})
	}
	return vo
}
