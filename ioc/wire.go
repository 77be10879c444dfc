//go:build wireinject

package ioc

import (
	"github.com/ecodeclub/bookstore/internal/cart"
	"github.com/ecodeclub/bookstore/internal/marketing"
	"github.com/ecodeclub/bookstore/internal/order"
	"github.com/ecodeclub/bookstore/internal/payment"
	"github.com/ecodeclub/bookstore/internal/product"
	"github.com/google/wire"
)

var BaseSet = wire.NewSet(InitDB, InitCache, InitRedis, InitMQ)

func InitApp() (*App, error) {
	wire.Build(wire.Struct(new(App), "*"),
		BaseSet,
		product.InitService,
		marketing.InitService,
		payment.InitModule,
		cart.InitModule,
		wire.FieldsOf(new(*cart.Module), "Svc", "Hdl"),
		order.InitModule,
		wire.FieldsOf(new(*order.Module), "Svc", "Hdl", "WebhookHdl"),
		InitSession,
		initGinxServer,
		initCloseAbandonedOrdersJob,
		initCronJobs)
	return new(App), nil
}
