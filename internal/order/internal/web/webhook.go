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
	"errors"
	"fmt"
	"io"

	"github.com/ecodeclub/bookstore/internal/order/internal/service"
	"github.com/ecodeclub/bookstore/internal/payment"
	"github.com/ecodeclub/ginx"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
)

var _ ginx.Handler = &WebhookHandler{}

// WebhookHandler 接收支付网关的回调。签名校验先于一切,
// 校验失败的请求不会触达任何业务逻辑
type WebhookHandler struct {
	verifier *payment.Verifier
	svc      service.Service
	l        *elog.Component
}

func NewWebhookHandler(verifier *payment.Verifier, svc service.Service) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		svc:      svc,
		l:        elog.DefaultLogger,
	}
}

func (h *WebhookHandler) PrivateRoutes(_ *gin.Engine) {}

func (h *WebhookHandler) PublicRoutes(server *gin.Engine) {
	server.POST("/pay/callback", ginx.W(h.HandleGatewayCallback))
}

func (h *WebhookHandler) HandleGatewayCallback(ctx *ginx.Context) (ginx.Result, error) {
	rawBody, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return systemErrorResult, fmt.Errorf("读取回调请求体失败: %w", err)
	}

	evt, err := h.verifier.VerifyAndParse(rawBody, ctx.GetHeader("X-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			// 签名不可信, 按安全事件记录
			h.l.Warn("收到签名非法的支付回调",
				elog.String("clientIP", ctx.ClientIP()))
		}
		return invalidInputResult, fmt.Errorf("回调校验失败: %w", err)
	}

	if !evt.IsCaptured() {
		// 其余事件类型与结算无关, 确认即可
		return ginx.Result{Msg: "OK"}, nil
	}

	err = h.svc.Settle(ctx.Request.Context(), evt)
	switch {
	case err == nil:
		return ginx.Result{Msg: "OK"}, nil
	case errors.Is(err, service.ErrOrderNotFound):
		// 未知订单, 确认以停止网关重试, 但留下日志供排查
		h.l.Warn("收到未知订单的支付回调",
			elog.String("gatewayOrderSN", evt.GatewayOrderSN))
		return ginx.Result{Msg: "OK"}, nil
	case errors.Is(err, service.ErrSettlementConflict):
		// 订单已标记失败, 重试也不会成功, 同样确认
		h.l.Error("支付回调结算冲突",
			elog.FieldErr(err),
			elog.String("gatewayOrderSN", evt.GatewayOrderSN))
		return ginx.Result{Msg: "OK"}, nil
	default:
		// 基础设施故障, 返回错误让网关按原样重新投递
		return systemErrorResult, fmt.Errorf("支付回调结算失败: %w", err)
	}
}
