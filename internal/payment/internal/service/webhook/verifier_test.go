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
	"testing"

	"github.com/ecodeclub/bookstore/internal/payment/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-webhook-secret"

func sign(t *testing.T, body []byte) string {
	t.Helper()
	h := hmac.New(sha256.New, []byte(testSecret))
	_, err := h.Write(body)
	require.NoError(t, err)
	return hex.EncodeToString(h.Sum(nil))
}

func TestVerifier_VerifyAndParse(t *testing.T) {
	t.Parallel()
	verifier := NewVerifier(testSecret)

	capturedBody := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"gw_order_123","id":"gw_pay_456"}}}}`)

	testCases := []struct {
		name      string
		body      []byte
		signature func(t *testing.T) string
		wantEvt   domain.WebhookEvent
		wantErr   error
	}{
		{
			name:      "合法的支付捕获回调",
			body:      capturedBody,
			signature: func(t *testing.T) string { return sign(t, capturedBody) },
			wantEvt: domain.WebhookEvent{
				Type:             "payment.captured",
				GatewayOrderSN:   "gw_order_123",
				GatewayPaymentSN: "gw_pay_456",
			},
		},
		{
			name: "签名是用其他密钥算的",
			body: capturedBody,
			signature: func(t *testing.T) string {
				h := hmac.New(sha256.New, []byte("wrong-secret"))
				h.Write(capturedBody)
				return hex.EncodeToString(h.Sum(nil))
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name: "请求体被篡改",
			body: []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"gw_order_999","id":"gw_pay_456"}}}}`),
			signature: func(t *testing.T) string {
				return sign(t, capturedBody)
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name:      "签名为空",
			body:      capturedBody,
			signature: func(t *testing.T) string { return "" },
			wantErr:   ErrInvalidSignature,
		},
		{
			name:      "签名通过但请求体不是JSON",
			body:      []byte(`not-json`),
			signature: func(t *testing.T) string { return sign(t, []byte(`not-json`)) },
			wantErr:   ErrMalformedPayload,
		},
		{
			name:      "签名通过但缺少event字段",
			body:      []byte(`{"payload":{}}`),
			signature: func(t *testing.T) string { return sign(t, []byte(`{"payload":{}}`)) },
			wantErr:   ErrMalformedPayload,
		},
		{
			name:      "支付捕获事件缺少order_id",
			body:      []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"gw_pay_456"}}}}`),
			signature: func(t *testing.T) string { return sign(t, []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"gw_pay_456"}}}}`)) },
			wantErr:   ErrMalformedPayload,
		},
		{
			name:      "支付捕获事件缺少支付流水号",
			body:      []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"gw_order_123"}}}}`),
			signature: func(t *testing.T) string { return sign(t, []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"gw_order_123"}}}}`)) },
			wantErr:   ErrMalformedPayload,
		},
		{
			name:      "非结算事件正常解析",
			body:      []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"gw_order_123","id":"gw_pay_456"}}}}`),
			signature: func(t *testing.T) string { return sign(t, []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"gw_order_123","id":"gw_pay_456"}}}}`)) },
			wantEvt: domain.WebhookEvent{
				Type:             "payment.failed",
				GatewayOrderSN:   "gw_order_123",
				GatewayPaymentSN: "gw_pay_456",
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			signature := tc.signature(t)
			evt, err := verifier.VerifyAndParse(tc.body, signature)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.wantEvt.Signature = signature
			assert.Equal(t, tc.wantEvt, evt)
		})
	}
}

func TestWebhookEvent_IsCaptured(t *testing.T) {
	t.Parallel()
	assert.True(t, domain.WebhookEvent{Type: domain.EventPaymentCaptured}.IsCaptured())
	assert.False(t, domain.WebhookEvent{Type: "payment.failed"}.IsCaptured())
}
