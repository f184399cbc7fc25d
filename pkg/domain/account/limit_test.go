package account_test

import (
	"testing"

	"github.com/amirasaad/ledgerbus/pkg/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	testCases := []struct {
		rule   string
		amount float64
		before float64
		after  float64
		want   bool
	}{
		{rule: "amount < 10", amount: 5, want: true},
		{rule: "amount < 10", amount: 10, want: false},
		{rule: "amount <= 10", amount: 10, want: true},
		{rule: "amount > 1", amount: 1, want: false},
		{rule: "amount >= 1", amount: 1, want: true},
		{rule: "amount == 3", amount: 3, want: true},
		{rule: "amount != 3", amount: 3, want: false},
		{rule: "before >= 50", before: 50, want: true},
		{rule: "after>=100", after: 99.5, want: false},
		{rule: "after >= 100 && amount <= 500", amount: 400, after: 100, want: true},
		{rule: "after >= 100 && amount <= 500", amount: 501, after: 1000, want: false},
		{rule: "amount > -1", amount: 0, want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.rule, func(t *testing.T) {
			limit, err := account.ParseLimit(tc.rule)
			require.NoError(t, err)
			assert.Equal(t, tc.want, limit(tc.amount, tc.before, tc.after))
		})
	}
}

func TestParseLimit_Invalid(t *testing.T) {
	rules := []string{
		"",
		"   ",
		"amount",
		"fee < 10",
		"amount < ten",
		"amount < 10 &&",
		"10 > amount",
		"amount < Inf",
	}
	for _, rule := range rules {
		t.Run(rule, func(t *testing.T) {
			limit, err := account.ParseLimit(rule)
			assert.ErrorIs(t, err, account.ErrInvalidLimitRule)
			assert.Nil(t, limit)
		})
	}
}
