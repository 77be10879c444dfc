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

//go:build e2e

package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecodeclub/bookstore/internal/cart"
	"github.com/ecodeclub/bookstore/internal/marketing"
	"github.com/ecodeclub/bookstore/internal/order"
	"github.com/ecodeclub/bookstore/internal/order/internal/domain"
	"github.com/ecodeclub/bookstore/internal/order/internal/errs"
	"github.com/ecodeclub/bookstore/internal/order/internal/event"
	"github.com/ecodeclub/bookstore/internal/order/internal/service"
	"github.com/ecodeclub/bookstore/internal/order/internal/web"
	"github.com/ecodeclub/bookstore/internal/payment"
	"github.com/ecodeclub/bookstore/internal/product"
	"github.com/ecodeclub/bookstore/internal/test"
	testioc "github.com/ecodeclub/bookstore/internal/test/ioc"
	"github.com/ecodeclub/ginx/session"
	"github.com/ecodeclub/mq-api"
	"github.com/ego-component/egorm"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/server/egin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testUID           = int64(234)
	testWebhookSecret = "test-webhook-secret"
)

type fakeGatewayClient struct {
	counter atomic.Int64
	failing atomic.Bool
}

func (f *fakeGatewayClient) CreateOrder(_ context.Context, amount int64, currency string, receipt string) (payment.GatewayOrder, error) {
	if f.failing.Load() {
		return payment.GatewayOrder{}, fmt.Errorf("%w: 模拟网关不可用", payment.ErrGateway)
	}
	n := f.counter.Add(1)
	return payment.GatewayOrder{
		SN:       fmt.Sprintf("gw_order_%d", n),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	}, nil
}

func TestOrderModule(t *testing.T) {
	suite.Run(t, new(OrderModuleTestSuite))
}

type OrderModuleTestSuite struct {
	suite.Suite
	server  *egin.Component
	db      *egorm.Component
	svc     order.Service
	cartSvc cart.Service
	gateway *fakeGatewayClient
	mq      mq.MQ
}

func (s *OrderModuleTestSuite) SetupSuite() {
	econf.Set("server", map[string]any{"contextTimeout": "1s"})
	econf.Set("order", map[string]any{
		"currency": "INR",
		"fees": map[string]any{
			"handlingFee":     2000,
			"baseDeliveryFee": 5000,
		},
	})

	s.db = testioc.InitDB()
	s.gateway = &fakeGatewayClient{}

	productSvc := product.InitService(s.db)
	marketingSvc := marketing.InitService(s.db)
	cartModule, err := cart.InitModule(s.db)
	require.NoError(s.T(), err)
	s.cartSvc = cartModule.Svc

	paymentModule := &payment.Module{
		Gateway:  s.gateway,
		Verifier: payment.NewVerifier(testWebhookSecret),
	}
	s.mq = testioc.InitMQ()
	module, err := order.InitModule(s.db, testioc.InitCache(), s.mq,
		cartModule.Svc, productSvc, marketingSvc, paymentModule)
	require.NoError(s.T(), err)
	s.svc = module.Svc

	server := egin.Load("server").Build()
	module.WebhookHdl.PublicRoutes(server.Engine)
	server.Use(func(ctx *gin.Context) {
		ctx.Set("_session", session.NewMemorySession(session.Claims{
			Uid: testUID,
		}))
	})
	module.Hdl.PrivateRoutes(server.Engine)
	s.server = server
}

func (s *OrderModuleTestSuite) TearDownTest() {
	for _, table := range []string{
		"orders", "order_items", "books",
		"carts", "cart_items",
		"discounts", "discount_usages",
	} {
		require.NoError(s.T(), s.db.Exec("TRUNCATE TABLE `"+table+"`").Error)
	}
	s.gateway.failing.Store(false)
}

func (s *OrderModuleTestSuite) seedBook(id int64, price, stock int64) {
	now := time.Now().UnixMilli()
	err := s.db.Table("books").Create(map[string]any{
		"id":        id,
		"sn":        fmt.Sprintf("BOOK%d", id),
		"title":     fmt.Sprintf("图书%d", id),
		"author":    "作者",
		"price":     price,
		"stock":     stock,
		"seller_id": int64(1),
		"ctime":     now,
		"utime":     now,
	}).Error
	require.NoError(s.T(), err)
}

func (s *OrderModuleTestSuite) seedDiscount(code string, typ uint8, value, minCartValue, maxUses, maxUsesPerUser int64) int64 {
	now := time.Now().UnixMilli()
	err := s.db.Table("discounts").Create(map[string]any{
		"id":                int64(1),
		"code":              code,
		"description":       "测试优惠券",
		"type":              typ,
		"value":             value,
		"min_cart_value":    minCartValue,
		"max_uses":          maxUses,
		"max_uses_per_user": maxUsesPerUser,
		"times_used":        int64(0),
		"active":            true,
		"start_at":          int64(0),
		"end_at":            int64(0),
		"ctime":             now,
		"utime":             now,
	}).Error
	require.NoError(s.T(), err)
	return 1
}

func (s *OrderModuleTestSuite) bookStock(id int64) int64 {
	var stock int64
	require.NoError(s.T(), s.db.Table("books").Where("id = ?", id).Select("stock").Scan(&stock).Error)
	return stock
}

func (s *OrderModuleTestSuite) cartItemCount() int64 {
	var count int64
	require.NoError(s.T(), s.db.Table("cart_items").Count(&count).Error)
	return count
}

func (s *OrderModuleTestSuite) checkout(req web.CheckoutReq, idempotencyKey string) *test.Result[web.CheckoutResp] {
	body, err := json.Marshal(req)
	require.NoError(s.T(), err)
	httpReq, err := http.NewRequest(http.MethodPost, "/order/checkout", bytes.NewReader(body))
	require.NoError(s.T(), err)
	httpReq.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", idempotencyKey)
	}
	recorder := httptest.NewRecorder()
	s.server.ServeHTTP(recorder, httpReq)
	var res test.Result[web.CheckoutResp]
	require.NoError(s.T(), json.Unmarshal(recorder.Body.Bytes(), &res))
	return &res
}

func (s *OrderModuleTestSuite) deliverWebhook(body []byte, signature string) *httptest.ResponseRecorder {
	httpReq, err := http.NewRequest(http.MethodPost, "/pay/callback", bytes.NewReader(body))
	require.NoError(s.T(), err)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Signature", signature)
	recorder := httptest.NewRecorder()
	s.server.ServeHTTP(recorder, httpReq)
	return recorder
}

func (s *OrderModuleTestSuite) sign(body []byte) string {
	h := hmac.New(sha256.New, []byte(testWebhookSecret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *OrderModuleTestSuite) capturedEventBody(gatewayOrderSN, gatewayPaymentSN string) []byte {
	return []byte(fmt.Sprintf(
		`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":%q,"id":%q}}}}`,
		gatewayOrderSN, gatewayPaymentSN))
}

// collectSettledEvents 用一个新的消费组从头读取结算事件主题,
// 返回属于 orderSN 的事件数。内存实现按秒批量投递, 窗口取足够的冗余
func (s *OrderModuleTestSuite) collectSettledEvents(groupID, orderSN string) int {
	t := s.T()
	consumer, err := s.mq.Consumer("order_settled_events", groupID)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	count := 0
	for {
		msg, err := consumer.Consume(ctx)
		if err != nil {
			break
		}
		var evt event.OrderSettledEvent
		require.NoError(t, json.Unmarshal(msg.Value, &evt))
		if evt.OrderSN == orderSN {
			count++
		}
	}
	return count
}

func (s *OrderModuleTestSuite) TestCheckout_COD() {
	t := s.T()
	s.seedBook(100, 19900, 10)
	ctx := context.Background()
	require.NoError(t, s.cartSvc.AddItem(ctx, testUID, 100, 2))

	res := s.checkout(web.CheckoutReq{
		RequestID:     "req-cod-1",
		PaymentMethod: domain.PaymentMethodCOD.ToUint8(),
	}, "")

	require.Equal(t, 0, res.Code)
	o := res.Data.Order
	assert.NotEmpty(t, o.SN)
	assert.Equal(t, int64(39800), o.Subtotal)
	assert.Equal(t, int64(2000), o.HandlingFee)
	assert.Equal(t, int64(5000), o.DeliveryFee)
	assert.Equal(t, int64(46800), o.FinalAmount)
	assert.Equal(t, domain.OrderStatusProcessing.ToUint8(), o.Status)
	assert.Equal(t, domain.PaymentStatusPending.ToUint8(), o.PaymentStatus)
	assert.Empty(t, o.GatewayOrderSN)

	// 货到付款直接占用库存并清空购物车
	assert.Equal(t, int64(8), s.bookStock(100))
	assert.Equal(t, int64(0), s.cartItemCount())
}

func (s *OrderModuleTestSuite) TestCheckout_EmptyCart() {
	res := s.checkout(web.CheckoutReq{
		RequestID:     "req-empty-1",
		PaymentMethod: domain.PaymentMethodCOD.ToUint8(),
	}, "")
	assert.Equal(s.T(), errs.InvalidInput.Code, res.Code)
}

func (s *OrderModuleTestSuite) TestCheckout_InvalidPaymentMethod() {
	s.seedBook(100, 19900, 10)
	require.NoError(s.T(), s.cartSvc.AddItem(context.Background(), testUID, 100, 1))
	res := s.checkout(web.CheckoutReq{
		RequestID:     "req-badmethod-1",
		PaymentMethod: 99,
	}, "")
	assert.Equal(s.T(), errs.InvalidInput.Code, res.Code)
}

func (s *OrderModuleTestSuite) TestCheckout_StockGuard() {
	t := s.T()
	s.seedBook(100, 19900, 1)
	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 2))

	res := s.checkout(web.CheckoutReq{
		RequestID:     "req-stock-1",
		PaymentMethod: domain.PaymentMethodCOD.ToUint8(),
	}, "")

	assert.Equal(t, errs.InsufficientStock.Code, res.Code)
	assert.Equal(t, int64(1), s.bookStock(100))
}

func (s *OrderModuleTestSuite) TestCheckout_Online() {
	t := s.T()
	s.seedBook(100, 19900, 10)
	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 1))

	res := s.checkout(web.CheckoutReq{
		RequestID:     "req-online-1",
		PaymentMethod: domain.PaymentMethodOnline.ToUint8(),
	}, "")

	require.Equal(t, 0, res.Code)
	o := res.Data.Order
	assert.NotEmpty(t, o.GatewayOrderSN)
	assert.Equal(t, domain.OrderStatusPending.ToUint8(), o.Status)
	assert.Equal(t, domain.PaymentStatusPending.ToUint8(), o.PaymentStatus)

	// 支付完成之前不占库存、不清购物车
	assert.Equal(t, int64(10), s.bookStock(100))
	assert.Equal(t, int64(1), s.cartItemCount())
}

func (s *OrderModuleTestSuite) TestCheckout_Idempotent() {
	t := s.T()
	s.seedBook(100, 19900, 10)
	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 1))

	first := s.checkout(web.CheckoutReq{
		RequestID:     "req-idem-1",
		PaymentMethod: domain.PaymentMethodOnline.ToUint8(),
	}, "idem-key-1")
	require.Equal(t, 0, first.Code)

	second := s.checkout(web.CheckoutReq{
		RequestID:     "req-idem-2",
		PaymentMethod: domain.PaymentMethodOnline.ToUint8(),
	}, "idem-key-1")
	require.Equal(t, 0, second.Code)

	assert.Equal(t, first.Data.Order.SN, second.Data.Order.SN)

	var count int64
	require.NoError(t, s.db.Table("orders").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func (s *OrderModuleTestSuite) TestCheckout_GatewayErrorRollsBack() {
	t := s.T()
	s.seedBook(100, 19900, 10)
	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 1))
	s.gateway.failing.Store(true)

	res := s.checkout(web.CheckoutReq{
		RequestID:     "req-gwerr-1",
		PaymentMethod: domain.PaymentMethodOnline.ToUint8(),
	}, "")

	assert.Equal(t, errs.SystemError.Code, res.Code)
	// 没有留下无法支付的订单
	var count int64
	require.NoError(t, s.db.Table("orders").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func (s *OrderModuleTestSuite) TestCheckout_PercentageCoupon() {
	t := s.T()
	s.seedBook(100, 50000, 10)
	s.seedDiscount("SAVE10", 1, 10, 40000, 100, 2)
	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 1))

	res := s.checkout(web.CheckoutReq{
		RequestID:     "req-coupon-1",
		PaymentMethod: domain.PaymentMethodCOD.ToUint8(),
		CouponCode:    "save10",
	}, "")

	require.Equal(t, 0, res.Code)
	o := res.Data.Order
	assert.Equal(t, int64(50000), o.Subtotal)
	assert.Equal(t, int64(5000), o.DiscountAmount)
	assert.Equal(t, int64(52000), o.FinalAmount)

	// 货到付款当场消耗优惠券配额
	var timesUsed int64
	require.NoError(t, s.db.Table("discounts").Where("code = ?", "SAVE10").Select("times_used").Scan(&timesUsed).Error)
	assert.Equal(t, int64(1), timesUsed)
}

func (s *OrderModuleTestSuite) TestCheckout_CouponBelowMinCartValue() {
	t := s.T()
	s.seedBook(100, 10000, 10)
	s.seedDiscount("SAVE10", 1, 10, 40000, 100, 2)
	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 1))

	res := s.checkout(web.CheckoutReq{
		RequestID:     "req-coupon-min-1",
		PaymentMethod: domain.PaymentMethodCOD.ToUint8(),
		CouponCode:    "SAVE10",
	}, "")
	assert.Equal(t, errs.CouponUnusable.Code, res.Code)
}

func (s *OrderModuleTestSuite) initiateOnlineOrder(quantity int64) domain.Order {
	t := s.T()
	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, quantity))
	o, err := s.svc.Initiate(context.Background(), service.InitiateRequest{
		BuyerID:       testUID,
		PaymentMethod: domain.PaymentMethodOnline,
	})
	require.NoError(t, err)
	require.NotEmpty(t, o.GatewayOrderSN)
	return o
}

// initiateOnlineOrderWithCoupon 直接基于购物车当前内容下单, 不追加商品
func (s *OrderModuleTestSuite) initiateOnlineOrderWithCoupon(code string) domain.Order {
	t := s.T()
	o, err := s.svc.Initiate(context.Background(), service.InitiateRequest{
		BuyerID:       testUID,
		PaymentMethod: domain.PaymentMethodOnline,
		DiscountCode:  code,
	})
	require.NoError(t, err)
	require.NotEmpty(t, o.GatewayOrderSN)
	return o
}

func (s *OrderModuleTestSuite) settle(o domain.Order, gatewayPaymentSN string) *httptest.ResponseRecorder {
	body := s.capturedEventBody(o.GatewayOrderSN, gatewayPaymentSN)
	return s.deliverWebhook(body, s.sign(body))
}

func (s *OrderModuleTestSuite) TestWebhook_Settle() {
	t := s.T()
	s.seedBook(100, 19900, 10)
	o := s.initiateOnlineOrder(2)

	body := s.capturedEventBody(o.GatewayOrderSN, "gw_pay_1")
	recorder := s.deliverWebhook(body, s.sign(body))
	require.Equal(t, http.StatusOK, recorder.Code)

	settled, err := s.svc.FindOrder(context.Background(), o.SN, testUID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, settled.PaymentStatus)
	assert.Equal(t, domain.OrderStatusProcessing, settled.Status)
	assert.Equal(t, "gw_pay_1", settled.GatewayPaymentSN)
	assert.NotEmpty(t, settled.GatewaySignature)

	assert.Equal(t, int64(8), s.bookStock(100))
	assert.Equal(t, int64(0), s.cartItemCount())
}

func (s *OrderModuleTestSuite) TestWebhook_DuplicateDelivery() {
	t := s.T()
	s.seedBook(100, 19900, 10)
	o := s.initiateOnlineOrder(2)

	body := s.capturedEventBody(o.GatewayOrderSN, "gw_pay_1")
	signature := s.sign(body)
	require.Equal(t, http.StatusOK, s.deliverWebhook(body, signature).Code)
	require.Equal(t, http.StatusOK, s.deliverWebhook(body, signature).Code)

	// 库存只扣减一次
	assert.Equal(t, int64(8), s.bookStock(100))
	// 结算事件也只发出一次, 重复投递不触发下游重复处理
	assert.Equal(t, 1, s.collectSettledEvents("test_duplicate_delivery", o.SN))
}

func (s *OrderModuleTestSuite) TestWebhook_BadSignature() {
	t := s.T()
	s.seedBook(100, 19900, 10)
	o := s.initiateOnlineOrder(1)

	body := s.capturedEventBody(o.GatewayOrderSN, "gw_pay_1")
	recorder := s.deliverWebhook(body, "deadbeef")

	var res test.Result[any]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
	assert.Equal(t, errs.InvalidInput.Code, res.Code)

	// 订单保持待支付
	unchanged, err := s.svc.FindOrder(context.Background(), o.SN, testUID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, unchanged.PaymentStatus)
	assert.Equal(t, int64(10), s.bookStock(100))
}

func (s *OrderModuleTestSuite) TestWebhook_UnknownOrderAcked() {
	body := s.capturedEventBody("gw_order_unknown", "gw_pay_1")
	recorder := s.deliverWebhook(body, s.sign(body))
	assert.Equal(s.T(), http.StatusOK, recorder.Code)
}

func (s *OrderModuleTestSuite) TestWebhook_NonCaptureEventAcked() {
	body := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"gw_order_1","id":"gw_pay_1"}}}}`)
	recorder := s.deliverWebhook(body, s.sign(body))
	assert.Equal(s.T(), http.StatusOK, recorder.Code)
}

func (s *OrderModuleTestSuite) TestWebhook_StockConflictMarksFailed() {
	t := s.T()
	s.seedBook(100, 19900, 2)
	o := s.initiateOnlineOrder(2)

	// 支付等待期间库存被其他渠道卖掉了
	require.NoError(t, s.db.Exec("UPDATE `books` SET `stock` = 1 WHERE `id` = ?", 100).Error)

	body := s.capturedEventBody(o.GatewayOrderSN, "gw_pay_1")
	recorder := s.deliverWebhook(body, s.sign(body))
	// 冲突是终态, 确认回调以免网关反复投递
	require.Equal(t, http.StatusOK, recorder.Code)

	failed, err := s.svc.FindOrder(context.Background(), o.SN, testUID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, failed.PaymentStatus)
	assert.Equal(t, domain.OrderStatusFailed, failed.Status)
	assert.Equal(t, int64(1), s.bookStock(100))
}

func (s *OrderModuleTestSuite) TestWebhook_CouponExhaustedMarksFailed() {
	t := s.T()
	s.seedBook(100, 50000, 10)
	// 全局配额只有一次
	s.seedDiscount("SAVE10", 1, 10, 0, 1, 2)

	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 1))
	first := s.initiateOnlineOrderWithCoupon("SAVE10")
	// 下单只校验不占配额, 支付前第二单仍可使用同一优惠券
	second := s.initiateOnlineOrderWithCoupon("SAVE10")

	require.Equal(t, http.StatusOK, s.settle(first, "gw_pay_1").Code)
	// 第二单结算时配额已被第一单耗尽, 冲突是终态, 仍确认回调
	require.Equal(t, http.StatusOK, s.settle(second, "gw_pay_2").Code)

	failed, err := s.svc.FindOrder(context.Background(), second.SN, testUID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, failed.PaymentStatus)
	assert.Equal(t, domain.OrderStatusFailed, failed.Status)

	// 计数器不越过上限, 冲突的结算不扣库存
	var timesUsed int64
	require.NoError(t, s.db.Table("discounts").Where("code = ?", "SAVE10").Select("times_used").Scan(&timesUsed).Error)
	assert.Equal(t, int64(1), timesUsed)
	assert.Equal(t, int64(9), s.bookStock(100))
}

func (s *OrderModuleTestSuite) TestWebhook_CouponUserQuotaExhaustedMarksFailed() {
	t := s.T()
	s.seedBook(100, 50000, 10)
	// 全局配额充足, 单个用户只能用一次
	s.seedDiscount("SAVE10", 1, 10, 0, 100, 1)

	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 1))
	first := s.initiateOnlineOrderWithCoupon("SAVE10")
	second := s.initiateOnlineOrderWithCoupon("SAVE10")

	require.Equal(t, http.StatusOK, s.settle(first, "gw_pay_1").Code)
	require.Equal(t, http.StatusOK, s.settle(second, "gw_pay_2").Code)

	failed, err := s.svc.FindOrder(context.Background(), second.SN, testUID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, failed.PaymentStatus)
	assert.Equal(t, domain.OrderStatusFailed, failed.Status)

	var usedCount int64
	require.NoError(t, s.db.Table("discount_usages").
		Where("uid = ?", testUID).Select("used_count").Scan(&usedCount).Error)
	assert.Equal(t, int64(1), usedCount)
}

func (s *OrderModuleTestSuite) TestWebhook_ConcurrentSettleStockGuard() {
	t := s.T()
	s.seedBook(100, 19900, 3)
	first := s.initiateOnlineOrder(2)
	// 购物车未被清空, 第二单复用同样的两件
	second, err := s.svc.Initiate(context.Background(), service.InitiateRequest{
		BuyerID:       testUID,
		PaymentMethod: domain.PaymentMethodOnline,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	recorders := make([]*httptest.ResponseRecorder, 2)
	for i, o := range []domain.Order{first, second} {
		wg.Add(1)
		i, o := i, o
		go func() {
			defer wg.Done()
			recorders[i] = s.settle(o, fmt.Sprintf("gw_pay_%d", i+1))
		}()
	}
	wg.Wait()
	require.Equal(t, http.StatusOK, recorders[0].Code)
	require.Equal(t, http.StatusOK, recorders[1].Code)

	// 条件更新裁决并发, 库存不会变成负数
	assert.Equal(t, int64(1), s.bookStock(100))

	var completed, failed int
	for _, o := range []domain.Order{first, second} {
		got, err := s.svc.FindOrder(context.Background(), o.SN, testUID)
		require.NoError(t, err)
		switch got.PaymentStatus {
		case domain.PaymentStatusCompleted:
			completed++
		case domain.PaymentStatusFailed:
			failed++
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
}

func (s *OrderModuleTestSuite) TestCloseAbandonedOrders() {
	t := s.T()
	s.seedBook(100, 19900, 10)
	stale := s.initiateOnlineOrder(1)
	// 把它做旧成一小时前创建的
	staleCtime := time.Now().Add(-time.Hour).UnixMilli()
	require.NoError(t, s.db.Exec("UPDATE `orders` SET `ctime` = ? WHERE `sn` = ?", staleCtime, stale.SN).Error)

	require.NoError(t, s.cartSvc.AddItem(context.Background(), testUID, 100, 1))
	fresh, err := s.svc.Initiate(context.Background(), service.InitiateRequest{
		BuyerID:       testUID,
		PaymentMethod: domain.PaymentMethodOnline,
	})
	require.NoError(t, err)

	job := order.NewCloseAbandonedOrdersJob(s.svc, 10, 30, time.Minute)
	require.NoError(t, job.Run())

	closed, err := s.svc.FindOrder(context.Background(), stale.SN, testUID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, closed.Status)
	assert.Equal(t, domain.PaymentStatusFailed, closed.PaymentStatus)

	untouched, err := s.svc.FindOrder(context.Background(), fresh.SN, testUID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, untouched.Status)
	assert.Equal(t, domain.PaymentStatusPending, untouched.PaymentStatus)
}
