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

package payment

import (
	"github.com/ecodeclub/bookstore/internal/payment/internal/domain"
	"github.com/ecodeclub/bookstore/internal/payment/internal/service/gateway"
	"github.com/ecodeclub/bookstore/internal/payment/internal/service/webhook"
)

type (
	GatewayClient = gateway.Client
	GatewayOrder  = domain.GatewayOrder
	WebhookEvent  = domain.WebhookEvent
	Verifier      = webhook.Verifier
)

const EventPaymentCaptured = domain.EventPaymentCaptured

// NewVerifier 供集成测试以自定义密钥构造校验器
var NewVerifier = webhook.NewVerifier

var (
	ErrGateway          = gateway.ErrGateway
	ErrInvalidSignature = webhook.ErrInvalidSignature
	ErrMalformedPayload = webhook.ErrMalformedPayload
)

type Module struct {
	Gateway  GatewayClient
	Verifier *Verifier
}
