package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from     EscrowStatus
		to       EscrowStatus
		expected bool
	}{
		{EscrowCreated, EscrowHeld, true},
		{EscrowCreated, EscrowApproved, false},
		{EscrowCreated, EscrowPaidOut, false},
		{EscrowHeld, EscrowWorkSubmitted, true},
		{EscrowHeld, EscrowRefunded, true},
		{EscrowHeld, EscrowDisputed, true},
		{EscrowHeld, EscrowPaidOut, false},
		{EscrowWorkSubmitted, EscrowApproved, true},
		{EscrowWorkSubmitted, EscrowRefunded, false},
		{EscrowWorkSubmitted, EscrowDisputed, true},
		{EscrowApproved, EscrowPaidOut, true},
		{EscrowDisputed, EscrowRefunded, true},
		{EscrowDisputed, EscrowPaidOut, true},
		{EscrowDisputed, EscrowHeld, false},
		{EscrowPaidOut, EscrowRefunded, false},
		{EscrowRefunded, EscrowPaidOut, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, CanTransition(tt.from, tt.to))
		})
	}
}

func TestEscrow_Transition(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Happy path stamps every step", func(t *testing.T) {
		e := &Escrow{Status: EscrowCreated}

		require.NoError(t, e.Transition(EscrowHeld, now))
		require.NoError(t, e.Transition(EscrowWorkSubmitted, now.Add(time.Hour)))
		require.NoError(t, e.Transition(EscrowApproved, now.Add(2*time.Hour)))
		require.NoError(t, e.Transition(EscrowPaidOut, now.Add(2*time.Hour)))

		assert.Equal(t, EscrowPaidOut, e.Status)
		assert.Equal(t, now, *e.PaymentCapturedAt)
		assert.Equal(t, now.Add(time.Hour), *e.WorkSubmittedAt)
		assert.NotNil(t, e.ApprovedAt)
		assert.NotNil(t, e.PaidOutAt)
		assert.True(t, e.IsTerminal())
	})

	t.Run("Rejected transition leaves escrow untouched", func(t *testing.T) {
		e := &Escrow{Status: EscrowCreated}

		err := e.Transition(EscrowApproved, now)

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidStateTransition))
		var stateErr *StateError
		require.True(t, errors.As(err, &stateErr))
		assert.Equal(t, "CREATED", stateErr.Current)
		assert.Equal(t, EscrowCreated, e.Status)
		assert.Nil(t, e.ApprovedAt)
	})

	t.Run("Closed dispute is terminal", func(t *testing.T) {
		e := &Escrow{Status: EscrowHeld}
		require.NoError(t, e.Transition(EscrowDisputed, now))
		assert.False(t, e.IsTerminal())

		require.NoError(t, e.Close(now))
		assert.True(t, e.IsTerminal())

		err := e.Transition(EscrowRefunded, now)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.ErrorIs(t, e.Close(now), ErrInvalidStateTransition)
	})

	t.Run("Close requires dispute", func(t *testing.T) {
		e := &Escrow{Status: EscrowHeld}
		assert.ErrorIs(t, e.Close(now), ErrInvalidStateTransition)
	})
}

func TestEscrow_Parties(t *testing.T) {
	client, provider, stranger := uuid.New(), uuid.New(), uuid.New()
	e := &Escrow{ClientID: client, ProviderID: provider}

	assert.True(t, e.IsParty(client))
	assert.True(t, e.IsParty(provider))
	assert.False(t, e.IsParty(stranger))
	assert.Equal(t, provider, e.Counterparty(client))
	assert.Equal(t, client, e.Counterparty(provider))
}

func TestDisputeStatus(t *testing.T) {
	assert.True(t, DisputeOpen.IsActive())
	assert.True(t, DisputeUnderReview.IsActive())
	assert.False(t, DisputeClosed.IsActive())
	assert.True(t, DisputeResolvedSplit.IsOutcome())
	assert.False(t, DisputeUnderReview.IsOutcome())
}
