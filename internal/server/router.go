package server

import (
	"net/http"
	"reflect"
	"strings"

	invHandler "github.com/fekuna/omnipos-sales-service/internal/inventory/handler"
	syncHandler "github.com/fekuna/omnipos-sales-service/internal/reconcile/handler"
	saleHandler "github.com/fekuna/omnipos-sales-service/internal/sale/handler"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Inventory *invHandler.InventoryHandler
	Sale      *saleHandler.SaleHandler
	Sync      *syncHandler.SyncHandler
}

type Options struct {
	ShowErrorDetail bool
	ReleaseMode     bool
}

// NewRouter wires the gin engine with middlewares and routes.
func NewRouter(h Handlers, opts Options, log logger.ZapLogger) *gin.Engine {
	if opts.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	useJSONFieldNames()

	r := gin.New()
	r.Use(recoverer(opts.ShowErrorDetail, log))
	r.Use(prometheusMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	api.Use(zapLoggerMiddleware(log))
	api.Use(requireActor())
	api.Use(errorRenderer(opts.ShowErrorDetail, log))

	pos := api.Group("/pos")
	pos.POST("/sales", h.Sale.CreateSale)
	pos.GET("/sales/report", h.Sale.SalesReport)
	pos.GET("/sales/:saleId", h.Sale.GetSale)
	pos.POST("/sales/:saleId/refund", h.Sale.RefundSale)

	sync := api.Group("/sync")
	sync.POST("/batch", h.Sync.BatchSync)
	sync.GET("/pending", h.Sync.GetPendingSync)
	sync.POST("/resolve", h.Sync.ResolveConflicts)

	inv := api.Group("/inventory")
	inv.GET("", h.Inventory.ListStockItems)
	inv.GET("/movements", h.Inventory.ListMovements)
	inv.GET("/:productId", h.Inventory.GetStockItem)
	inv.POST("/:productId/adjust", h.Inventory.AdjustInventory)

	log.Info("router initialized")
	return r
}

// useJSONFieldNames makes validation messages name the JSON or form field the caller sent.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
}
