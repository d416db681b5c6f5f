package migration

import (
	appointmentdomain "github.com/smallbiznis/glamora/internal/appointment/domain"
	billingdomain "github.com/smallbiznis/glamora/internal/billing/domain"
	bookingdomain "github.com/smallbiznis/glamora/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/glamora/internal/catalog/domain"
	"github.com/smallbiznis/glamora/internal/config"
	customerdomain "github.com/smallbiznis/glamora/internal/customer/domain"
	enquirydomain "github.com/smallbiznis/glamora/internal/enquiry/domain"
	ledgerdomain "github.com/smallbiznis/glamora/internal/ledger/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// Non-postgres dialects (local sqlite, mysql) derive the schema from
		// the models directly.
		return conn.AutoMigrate(
			&customerdomain.Customer{},
			&ledgerdomain.WalletHistoryEntry{},
			&catalogdomain.CatalogItem{},
			&catalogdomain.StoreSetting{},
			&billingdomain.Bill{},
			&billingdomain.BillItem{},
			&billingdomain.BillPayment{},
			&billingdomain.HeldBill{},
			&appointmentdomain.Appointment{},
			&bookingdomain.Booking{},
			&enquirydomain.Enquiry{},
		)
	}),
)
