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

package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecodeclub/bookstore/internal/payment/internal/domain"
	"github.com/go-resty/resty/v2"
	"github.com/gotomicro/ego/core/elog"
)

// ErrGateway 网关不可达或拒绝请求, 对调用方而言可重试,
// 订单发起事务收到它之后必须整体回滚
var ErrGateway = errors.New("支付网关错误")

type Client interface {
	// CreateOrder 在网关侧创建支付单, amount 为最小货币单位
	CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (domain.GatewayOrder, error)
}

type Config struct {
	BaseURL   string        `yaml:"baseURL"`
	KeyID     string        `yaml:"keyID"`
	KeySecret string        `yaml:"keySecret"`
	Timeout   time.Duration `yaml:"timeout"`
}

func NewClient(cfg Config) Client {
	cli := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(cfg.Timeout)
	return &restyClient{cli: cli, l: elog.DefaultLogger}
}

type restyClient struct {
	cli *resty.Client
	l   *elog.Component
}

type createOrderReq struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

func (r *restyClient) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (domain.GatewayOrder, error) {
	var res createOrderResp
	resp, err := r.cli.R().
		SetContext(ctx).
		SetBody(createOrderReq{Amount: amount, Currency: currency, Receipt: receipt}).
		SetResult(&res).
		Post("/v1/orders")
	if err != nil {
		return domain.GatewayOrder{}, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	if resp.IsError() {
		r.l.Error("网关创建支付单被拒绝",
			elog.Int("statusCode", resp.StatusCode()),
			elog.String("receipt", receipt))
		return domain.GatewayOrder{}, fmt.Errorf("%w: 状态码 %d", ErrGateway, resp.StatusCode())
	}
	if res.ID == "" {
		return domain.GatewayOrder{}, fmt.Errorf("%w: 响应缺少支付单号", ErrGateway)
	}
	return domain.GatewayOrder{
		SN:       res.ID,
		Amount:   res.Amount,
		Currency: res.Currency,
		Receipt:  res.Receipt,
	}, nil
}
