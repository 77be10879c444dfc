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

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ecodeclub/bookstore/internal/payment/internal/domain"
)

var (
	// ErrInvalidSignature 签名不匹配, 回调不可信, 调用方不得执行任何状态变更
	ErrInvalidSignature = errors.New("回调签名非法")
	// ErrMalformedPayload 签名通过但载荷缺少必要字段
	ErrMalformedPayload = errors.New("回调载荷非法")
)

// Verifier 对回调请求体做 HMAC-SHA256 校验。
// 必须对原始字节计算, 反序列化再序列化会改变字节导致校验失败
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// 网关回调的信封结构
type envelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string `json:"order_id"`
				ID      string `json:"id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// VerifyAndParse 校验 rawBody 的签名并解析事件。
// 签名比较使用常数时间实现, 失败即拒绝
func (v *Verifier) VerifyAndParse(rawBody []byte, signature string) (domain.WebhookEvent, error) {
	h := hmac.New(sha256.New, v.secret)
	h.Write(rawBody)
	expected := hex.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.WebhookEvent{}, ErrInvalidSignature
	}

	var env envelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return domain.WebhookEvent{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if env.Event == "" {
		return domain.WebhookEvent{}, fmt.Errorf("%w: 缺少 event 字段", ErrMalformedPayload)
	}
	if env.Event == domain.EventPaymentCaptured {
		// 结算需要订单号定位, 支付流水号落库存档, 缺一不可
		if env.Payload.Payment.Entity.OrderID == "" {
			return domain.WebhookEvent{}, fmt.Errorf("%w: 缺少 order_id 字段", ErrMalformedPayload)
		}
		if env.Payload.Payment.Entity.ID == "" {
			return domain.WebhookEvent{}, fmt.Errorf("%w: 缺少支付流水号 id 字段", ErrMalformedPayload)
		}
	}
	return domain.WebhookEvent{
		Type:             env.Event,
		GatewayOrderSN:   env.Payload.Payment.Entity.OrderID,
		GatewayPaymentSN: env.Payload.Payment.Entity.ID,
		Signature:        signature,
	}, nil
}
