// Package fees computes how a gross payment is divided between the payment
// gateway, the platform and the provider.
package fees

import (
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

const (
	moneyPlaces   = 2
	percentPlaces = 2
)

var hundred = decimal.NewFromInt(100)

// Config is a snapshot of the fee percentages in force when an escrow is
// created. It is frozen into the escrow and never re-read.
type Config struct {
	GatewayFeePercent  decimal.Decimal
	PlatformFeePercent decimal.Decimal
}

func (c Config) Validate() error {
	if c.GatewayFeePercent.IsNegative() || c.PlatformFeePercent.IsNegative() {
		return domain.Validationf("fee percentages must not be negative")
	}
	for _, pct := range []decimal.Decimal{c.GatewayFeePercent, c.PlatformFeePercent} {
		if err := validatePrecision(pct); err != nil {
			return err
		}
	}
	if c.GatewayFeePercent.Add(c.PlatformFeePercent).GreaterThan(hundred) {
		return domain.Validationf("fee percentages exceed 100")
	}
	return nil
}

type Breakdown struct {
	GrossAmount        decimal.Decimal
	GatewayFeePercent  decimal.Decimal
	GatewayFee         decimal.Decimal
	PlatformFeePercent decimal.Decimal
	PlatformFee        decimal.Decimal
	AmountAfterGateway decimal.Decimal
	ProviderPayout     decimal.Decimal
	PlatformEarnings   decimal.Decimal
}

// Calculate splits gross into fees and payout. Each fee is rounded half-up to
// two places on its own; the payout absorbs the rounding so that
// gatewayFee + platformFee + providerPayout == gross.
func Calculate(gross decimal.Decimal, cfg Config) (Breakdown, error) {
	if err := cfg.Validate(); err != nil {
		return Breakdown{}, err
	}
	if err := ValidateAmount(gross); err != nil {
		return Breakdown{}, err
	}

	gatewayFee := PercentOf(gross, cfg.GatewayFeePercent)
	platformFee := PercentOf(gross, cfg.PlatformFeePercent)
	afterGateway := gross.Sub(gatewayFee)
	payout := afterGateway.Sub(platformFee)
	if payout.IsNegative() {
		return Breakdown{}, domain.Validationf("amount %s does not cover fees", gross.StringFixed(moneyPlaces))
	}

	return Breakdown{
		GrossAmount:        gross,
		GatewayFeePercent:  cfg.GatewayFeePercent,
		GatewayFee:         gatewayFee,
		PlatformFeePercent: cfg.PlatformFeePercent,
		PlatformFee:        platformFee,
		AmountAfterGateway: afterGateway,
		ProviderPayout:     payout,
		PlatformEarnings:   platformFee,
	}, nil
}

// ValidateAmount accepts positive money values with at most two decimals.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.Validationf("amount must be positive")
	}
	if !amount.Equal(amount.Truncate(moneyPlaces)) {
		return domain.Validationf("amount %s has more than %d decimal places", amount.String(), moneyPlaces)
	}
	return nil
}

func validatePrecision(pct decimal.Decimal) error {
	if !pct.Equal(pct.Truncate(percentPlaces)) {
		return domain.Validationf("percentage %s has more than %d decimal places", pct.String(), percentPlaces)
	}
	return nil
}

// PercentOf returns pct percent of amount rounded half-up to money precision.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Shift(-2).Round(moneyPlaces)
}

// FromEscrow rebuilds the frozen breakdown of an escrow.
func FromEscrow(e *domain.Escrow) Breakdown {
	return Breakdown{
		GrossAmount:        e.GrossAmount,
		GatewayFeePercent:  e.GatewayFeePercent,
		GatewayFee:         e.GatewayFee,
		PlatformFeePercent: e.PlatformFeePercent,
		PlatformFee:        e.PlatformFee,
		AmountAfterGateway: e.AmountAfterGateway,
		ProviderPayout:     e.ProviderPayout,
		PlatformEarnings:   e.PlatformEarnings,
	}
}
