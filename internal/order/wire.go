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

//go:build wireinject

package order

import (
	"sync"

	"github.com/ecodeclub/bookstore/internal/cart"
	"github.com/ecodeclub/bookstore/internal/marketing"
	"github.com/ecodeclub/bookstore/internal/order/internal/event"
	"github.com/ecodeclub/bookstore/internal/order/internal/repository"
	"github.com/ecodeclub/bookstore/internal/order/internal/repository/dao"
	"github.com/ecodeclub/bookstore/internal/order/internal/service"
	"github.com/ecodeclub/bookstore/internal/order/internal/web"
	"github.com/ecodeclub/bookstore/internal/payment"
	"github.com/ecodeclub/bookstore/internal/pkg/sequencenumber"
	"github.com/ecodeclub/bookstore/internal/product"
	"github.com/ecodeclub/ecache"
	"github.com/ecodeclub/mq-api"
	"github.com/ego-component/egorm"
	"github.com/google/wire"
	"github.com/gotomicro/ego/core/econf"
)

var ModuleSet = wire.NewSet(
	InitTablesOnce,
	initServiceConfig,
	initFeeConfig,
	repository.NewOrderRepository,
	event.NewOrderEventProducer,
	sequencenumber.NewGenerator,
	service.NewPricingCalculator,
	service.NewService,
	web.NewHandler,
	web.NewWebhookHandler,
	wire.Struct(new(Module), "*"))

func InitModule(db *egorm.Component,
	ec ecache.Cache,
	q mq.MQ,
	cartSvc cart.Service,
	productSvc product.Service,
	marketingSvc marketing.Service,
	paymentModule *payment.Module) (*Module, error) {
	wire.Build(ModuleSet,
		wire.FieldsOf(new(*payment.Module), "Gateway", "Verifier"))
	return new(Module), nil
}

func initServiceConfig() service.Config {
	var cfg service.Config
	err := econf.UnmarshalKey("order", &cfg)
	if err != nil {
		panic(err)
	}
	return cfg
}

func initFeeConfig(cfg service.Config) service.FeeConfig {
	return cfg.Fees
}

var once = &sync.Once{}

func InitTablesOnce(db *egorm.Component) dao.OrderDAO {
	once.Do(func() {
		_ = dao.InitTables(db)
	})
	return dao.NewOrderGORMDAO(db)
}
