package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/glamora/internal/appointment"
	appointmentdomain "github.com/smallbiznis/glamora/internal/appointment/domain"
	"github.com/smallbiznis/glamora/internal/billing"
	billingdomain "github.com/smallbiznis/glamora/internal/billing/domain"
	"github.com/smallbiznis/glamora/internal/booking"
	bookingdomain "github.com/smallbiznis/glamora/internal/booking/domain"
	"github.com/smallbiznis/glamora/internal/catalog"
	"github.com/smallbiznis/glamora/internal/config"
	"github.com/smallbiznis/glamora/internal/customer"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	"github.com/smallbiznis/glamora/internal/enquiry"
	enquirydomain "github.com/smallbiznis/glamora/internal/enquiry/domain"
	"github.com/smallbiznis/glamora/internal/ledger"
	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	"github.com/smallbiznis/glamora/internal/observability"
	obsmiddleware "github.com/smallbiznis/glamora/internal/observability/logger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	catalog.Module,
	customer.Module,
	ledger.Module,
	billing.Module,
	appointment.Module,
	booking.Module,
	enquiry.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	billingSvc     billingdomain.Service
	customerSvc    customerdomain.Service
	ledgerSvc      ledgerdomain.Service
	appointmentSvc appointmentdomain.Service
	bookingSvc     bookingdomain.Service
	enquirySvc     enquirydomain.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node

	BillingSvc     billingdomain.Service
	CustomerSvc    customerdomain.Service
	LedgerSvc      ledgerdomain.Service
	AppointmentSvc appointmentdomain.Service
	BookingSvc     bookingdomain.Service
	EnquirySvc     enquirydomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		billingSvc:     p.BillingSvc,
		customerSvc:    p.CustomerSvc,
		ledgerSvc:      p.LedgerSvc,
		appointmentSvc: p.AppointmentSvc,
		bookingSvc:     p.BookingSvc,
		enquirySvc:     p.EnquirySvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(StoreContext())

	v1.POST("/bills", s.CreateBill)
	v1.GET("/bills", s.ListBills)
	v1.POST("/bills/hold", s.HoldBill)
	v1.GET("/bills/held", s.ListHeldBills)
	v1.GET("/bills/held/:id", s.GetHeldBill)
	v1.DELETE("/bills/held/:id", s.DiscardHeldBill)
	v1.GET("/bills/:id", s.GetBill)
	v1.DELETE("/bills/:id", s.DeleteBill)

	v1.POST("/customers/find-or-create", s.FindOrCreateCustomer)
	v1.GET("/customers", s.ListCustomers)
	v1.GET("/customers/:id", s.GetCustomer)
	v1.GET("/customers/:id/wallet", s.ListCustomerWallet)

	v1.POST("/appointments", s.CreateAppointment)
	v1.GET("/appointments", s.ListAppointments)
	v1.GET("/appointments/:id", s.GetAppointment)

	v1.POST("/bookings", s.CreateBooking)
	v1.GET("/bookings", s.ListBookings)
	v1.GET("/bookings/:id", s.GetBooking)

	v1.POST("/enquiries", s.CreateEnquiry)
	v1.GET("/enquiries", s.ListEnquiries)
	v1.GET("/enquiries/:id", s.GetEnquiry)
}
