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

package ioc

import (
	"time"

	"github.com/ecodeclub/bookstore/internal/payment/internal/service/gateway"
	"github.com/ecodeclub/bookstore/internal/payment/internal/service/webhook"
	"github.com/gotomicro/ego/core/econf"
)

// GatewayConfig 支付网关配置, 密钥通过环境变量注入配置文件
type GatewayConfig struct {
	BaseURL       string `yaml:"baseURL"`
	KeyID         string `yaml:"keyID"`
	KeySecret     string `yaml:"keySecret"`
	WebhookSecret string `yaml:"webhookSecret"`
	TimeoutMS     int64  `yaml:"timeoutMS"`
}

func InitGatewayConfig() GatewayConfig {
	var cfg GatewayConfig
	err := econf.UnmarshalKey("payment.gateway", &cfg)
	if err != nil {
		panic(err)
	}
	return cfg
}

func InitGatewayClient(cfg GatewayConfig) gateway.Client {
	return gateway.NewClient(gateway.Config{
		BaseURL:   cfg.BaseURL,
		KeyID:     cfg.KeyID,
		KeySecret: cfg.KeySecret,
		Timeout:   time.Duration(cfg.TimeoutMS) * time.Millisecond,
	})
}

func InitWebhookVerifier(cfg GatewayConfig) *webhook.Verifier {
	return webhook.NewVerifier(cfg.WebhookSecret)
}
