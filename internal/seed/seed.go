package seed

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/accountcontext"
	authdomain "github.com/smallbiznis/faktura/internal/auth/domain"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@faktura.local"
	demoName     = "Demo Owner"
	demoCompany  = "Demo Workshop"
	demoPassword = "demo-faktura"
)

// EnsureDemoAccount seeds a demo account with one customer and one draft
// invoice. Safe to run repeatedly; existing data is left untouched.
func EnsureDemoAccount(
	db *gorm.DB,
	authSvc authdomain.Service,
	customerSvc customerdomain.Service,
	invoiceSvc invoicedomain.Service,
) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()

	user, created, err := ensureDemoUser(ctx, db, authSvc)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	ctx = accountcontext.WithAccountID(ctx, user.ID)

	customer, err := customerSvc.Create(ctx, customerdomain.CreateCustomerRequest{
		Name:     "Acme Supplies",
		Email:    "billing@acme.example",
		Currency: "USD",
	})
	if err != nil {
		return err
	}

	_, err = invoiceSvc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Number:     "INV-0001",
		Currency:   "USD",
		Notes:      "Thank you for your business.",
		Items: []invoicedomain.DraftItem{
			{
				Description: "Consulting hours",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.NewFromInt(100),
				TaxPercent:  decimal.NewFromInt(10),
			},
		},
	})
	return err
}

func ensureDemoUser(ctx context.Context, db *gorm.DB, authSvc authdomain.Service) (*authdomain.User, bool, error) {
	resp, err := authSvc.Signup(ctx, authdomain.SignupRequest{
		Email:       demoEmail,
		Name:        demoName,
		CompanyName: demoCompany,
		Password:    demoPassword,
	})
	if err == nil {
		return resp.User, true, nil
	}
	if !errors.Is(err, authdomain.ErrDuplicateEmail) {
		return nil, false, err
	}

	var user authdomain.User
	if err := db.WithContext(ctx).Where("email = ?", demoEmail).First(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, false, nil
}
