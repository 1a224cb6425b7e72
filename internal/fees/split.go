package fees

import (
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/influmarket/internal/domain"
)

type Shares struct {
	Client   decimal.Decimal
	Provider decimal.Decimal
}

func ValidateSplit(s domain.Split) error {
	for _, pct := range []decimal.Decimal{s.ClientPercent, s.InfluencerPercent} {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return domain.Validationf("split percentages must be between 0 and 100")
		}
		if err := validatePrecision(pct); err != nil {
			return err
		}
	}
	if !s.ClientPercent.Add(s.InfluencerPercent).Equal(hundred) {
		return domain.Validationf("split percentages must add up to 100")
	}
	return nil
}

// SplitShares divides a disputed escrow. The client share is taken from the
// gross amount and the provider share from the provider payout. The client
// share is capped so the two never exceed what the gateway actually settled.
func SplitShares(b Breakdown, s domain.Split) (Shares, error) {
	if err := ValidateSplit(s); err != nil {
		return Shares{}, err
	}

	provider := PercentOf(b.ProviderPayout, s.InfluencerPercent)
	client := PercentOf(b.GrossAmount, s.ClientPercent)
	if ceiling := b.AmountAfterGateway.Sub(provider); client.GreaterThan(ceiling) {
		client = ceiling
	}

	return Shares{Client: client, Provider: provider}, nil
}
