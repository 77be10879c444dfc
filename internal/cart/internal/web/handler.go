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
	"fmt"

	"github.com/ecodeclub/bookstore/internal/cart/internal/domain"
	"github.com/ecodeclub/bookstore/internal/cart/internal/service"
	"github.com/ecodeclub/ekit/slice"
	"github.com/ecodeclub/ginx"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-gonic/gin"
)

var _ ginx.Handler = &Handler{}

type Handler struct {
	svc service.Service
}

func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) PrivateRoutes(server *gin.Engine) {
	g := server.Group("/cart")
	g.POST("", ginx.S(h.RetrieveCart))
	g.POST("/add", ginx.BS[AddItemReq](h.AddItem))
	g.POST("/remove", ginx.BS[RemoveItemReq](h.RemoveItem))
}

func (h *Handler) PublicRoutes(_ *gin.Engine) {}

func (h *Handler) RetrieveCart(ctx *ginx.Context, sess session.Session) (ginx.Result, error) {
	cart, err := h.svc.FindByUID(ctx.Request.Context(), sess.Claims().Uid)
	if err != nil {
		return systemErrorResult, fmt.Errorf("获取购物车失败: %w", err)
	}
	return ginx.Result{
		Data: RetrieveCartResp{
			Items: slice.Map(cart.Items, func(idx int, src domain.Item) Item {
				return Item{
					BookID:   src.BookID,
					Quantity: src.Quantity,
				}
			}),
		},
	}, nil
}

func (h *Handler) AddItem(ctx *ginx.Context, req AddItemReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.AddItem(ctx.Request.Context(), sess.Claims().Uid, req.BookID, req.Quantity)
	if err != nil {
		return systemErrorResult, fmt.Errorf("添加购物车项失败: %w", err)
	}
	return ginx.Result{Msg: "OK"}, nil
}

func (h *Handler) RemoveItem(ctx *ginx.Context, req RemoveItemReq, sess session.Session) (ginx.Result, error) {
	err := h.svc.RemoveItem(ctx.Request.Context(), sess.Claims().Uid, req.BookID)
	if err != nil {
		return systemErrorResult, fmt.Errorf("移除购物车项失败: %w", err)
	}
	return ginx.Result{Msg: "OK"}, nil
}
