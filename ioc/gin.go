package ioc

import (
	"net/http"
	"strings"

	"github.com/ecodeclub/bookstore/internal/cart"
	"github.com/ecodeclub/bookstore/internal/order"
	"github.com/ecodeclub/ginx/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/server/egin"
)

func allowOrigin(origin string) bool {
	if strings.HasPrefix(origin, "http://localhost") {
		return true
	}
	// 只允许书店自己的域名过来的
	return strings.Contains(origin, "bookstore.ecodeclub.com")
}

func initGinxServer(sp session.Provider,
	cartHdl *cart.Handler,
	orderHdl *order.Handler,
	webhookHdl *order.WebhookHandler,
) *egin.Component {
	session.SetDefaultProvider(sp)
	res := egin.Load("web").Build()
	res.Use(cors.New(cors.Config{
		ExposeHeaders:    []string{"X-Refresh-Token", "X-Access-Token"},
		AllowCredentials: true,
		AllowHeaders:     []string{"Authorization", "Content-Type", "Idempotency-Key"},
		AllowOriginFunc: allowOrigin,
	}))
	res.GET("/hello", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world!")
	})
	// 支付网关的回调不走登录态, 靠签名校验
	webhookHdl.PublicRoutes(res.Engine)
	// 登录校验
	res.Use(session.CheckLoginMiddleware())
	cartHdl.PrivateRoutes(res.Engine)
	orderHdl.PrivateRoutes(res.Engine)
	return res
}
