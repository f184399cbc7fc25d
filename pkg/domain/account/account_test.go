package account_test

import (
	"math"
	"testing"

	"github.com/amirasaad/ledgerbus/pkg/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegistration(t *testing.T) {
	testCases := []struct {
		name        string
		reg         account.Registration
		expectedErr error
		wantLimit   bool
	}{
		{name: "valid without limit", reg: account.Registration{Name: "Alice", Balance: 100}},
		{
			name:      "valid with closure limit",
			reg:       account.Registration{Name: "Carl", Balance: 700, Limit: func(a, _, _ float64) bool { return a < 10 }},
			wantLimit: true,
		},
		{name: "valid with rule", reg: account.Registration{Name: "Dana", Balance: 1, LimitRule: "amount < 10"}, wantLimit: true},
		{name: "empty name", reg: account.Registration{Balance: 100}, expectedErr: account.ErrNameRequired},
		{name: "zero balance", reg: account.Registration{Name: "A"}, expectedErr: account.ErrInitialBalance},
		{name: "negative balance", reg: account.Registration{Name: "A", Balance: -1}, expectedErr: account.ErrInitialBalance},
		{name: "NaN balance", reg: account.Registration{Name: "A", Balance: math.NaN()}, expectedErr: account.ErrInitialBalance},
		{name: "infinite balance", reg: account.Registration{Name: "A", Balance: math.Inf(1)}, expectedErr: account.ErrInitialBalance},
		{name: "bad rule", reg: account.Registration{Name: "A", Balance: 1, LimitRule: "fee < 3"}, expectedErr: account.ErrInvalidLimit},
		{
			name:        "closure and rule together",
			reg:         account.Registration{Name: "A", Balance: 1, LimitRule: "amount < 3", Limit: func(_, _, _ float64) bool { return true }},
			expectedErr: account.ErrInvalidLimit,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			limit, err := account.ValidateRegistration(tc.reg)
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, limit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLimit, limit != nil)
		})
	}
}

func TestAccount_ValidateAdd(t *testing.T) {
	acc := &account.Account{ID: 1, Name: "Alice", Balance: 10}

	require.NoError(t, acc.ValidateAdd(5))
	// Negative adjustments are corrections, not rejected here.
	require.NoError(t, acc.ValidateAdd(-50))
	assert.ErrorIs(t, acc.ValidateAdd(math.NaN()), account.ErrAmountMustBePositive)
	assert.ErrorIs(t, acc.ValidateAdd(math.Inf(-1)), account.ErrAmountMustBePositive)
	assert.Equal(t, 10.0, acc.Balance)

	big := &account.Account{ID: 2, Name: "Big", Balance: math.MaxFloat64}
	assert.ErrorIs(t, big.ValidateAdd(math.MaxFloat64), account.ErrBalanceOverflow)
}

func TestAccount_ChangeLimit(t *testing.T) {
	acc := &account.Account{ID: 3, Name: "Carl", Balance: 700}

	require.NoError(t, acc.ChangeLimit(func(a, _, _ float64) bool { return a < 10 }, ""))
	require.True(t, acc.HasLimit())
	assert.False(t, acc.Limit(20, 700, 680))

	require.NoError(t, acc.ChangeLimit(nil, "amount < 100"))
	assert.True(t, acc.Limit(20, 700, 680))

	err := acc.ChangeLimit(nil, "")
	assert.ErrorIs(t, err, account.ErrLimitRequired)
	assert.True(t, acc.Limit(20, 700, 680), "rejected change keeps the previous limit")

	err = acc.ChangeLimit(nil, "amount <")
	assert.ErrorIs(t, err, account.ErrLimitRequired)
	assert.ErrorIs(t, err, account.ErrInvalidLimitRule)
	assert.Equal(t, "limit must be a function", err.Error())

	err = acc.ChangeLimit(func(_, _, _ float64) bool { return true }, "amount < 1")
	assert.ErrorIs(t, err, account.ErrLimitRequired)
}

func TestLimitError(t *testing.T) {
	_, err := account.ValidateRegistration(account.Registration{Name: "A", Balance: 1, LimitRule: "fee < 3"})
	require.Error(t, err)
	assert.Equal(t, "limit must be a function or null", err.Error())

	var limitErr *account.LimitError
	require.ErrorAs(t, err, &limitErr)
	require.ErrorIs(t, limitErr.Detail, account.ErrInvalidLimitRule)
	assert.Contains(t, limitErr.Detail.Error(), `unknown operand "fee"`)
}

func TestAccount_SettleDebit(t *testing.T) {
	testCases := []struct {
		name        string
		balance     float64
		expected    float64
		expectedErr error
	}{
		{name: "unchanged balance keeps validated result", balance: 100, expected: 60},
		{name: "credited meanwhile", balance: 150, expected: 110},
		{name: "debited meanwhile", balance: 70, expected: 30},
		{name: "drained meanwhile", balance: 30, expectedErr: account.ErrInsufficientFundsWithdraw},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc := &account.Account{ID: 1, Name: "Alice", Balance: tc.balance}
			updated, err := acc.SettleDebit(100, 60, 40, account.ErrInsufficientFundsWithdraw)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, updated)
			assert.Equal(t, tc.balance, acc.Balance)
		})
	}
}

func TestAccount_ValidateWithdraw(t *testing.T) {
	below10 := func(amount, _, _ float64) bool { return amount < 10 }

	testCases := []struct {
		name        string
		balance     float64
		limit       account.Limit
		amount      float64
		expected    float64
		expectedErr error
	}{
		{name: "success", balance: 100, amount: 40, expected: 60},
		{name: "exact balance", balance: 100, amount: 100, expected: 0},
		{name: "zero amount", balance: 100, amount: 0, expectedErr: account.ErrAmountMustBePositive},
		{name: "negative amount", balance: 100, amount: -5, expectedErr: account.ErrAmountMustBePositive},
		{name: "NaN amount", balance: 100, amount: math.NaN(), expectedErr: account.ErrAmountMustBePositive},
		{name: "overdraw", balance: 100, amount: 101, expectedErr: account.ErrInsufficientFundsWithdraw},
		{name: "limit allows", balance: 700, limit: below10, amount: 5, expected: 695},
		{name: "limit rejects", balance: 700, limit: below10, amount: 20, expectedErr: account.ErrWithdrawLimit},
		// Insufficient funds is reported before the limit is consulted.
		{name: "overdraw with limit", balance: 5, limit: below10, amount: 50, expectedErr: account.ErrInsufficientFundsWithdraw},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc := &account.Account{ID: 1, Name: "Carl", Balance: tc.balance, Limit: tc.limit}
			updated, err := acc.ValidateWithdraw(tc.amount)
			assert.Equal(t, tc.balance, acc.Balance, "validation must not mutate the balance")
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, updated)
		})
	}
}

func TestAccount_ValidateWithdraw_LimitArguments(t *testing.T) {
	var gotAmount, gotBefore, gotAfter float64
	acc := &account.Account{ID: 1, Name: "Carl", Balance: 700, Limit: func(amount, before, after float64) bool {
		gotAmount, gotBefore, gotAfter = amount, before, after
		return true
	}}

	_, err := acc.ValidateWithdraw(5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, gotAmount)
	assert.Equal(t, 700.0, gotBefore)
	assert.Equal(t, 695.0, gotAfter)
}

func TestAccount_ValidateTransfer(t *testing.T) {
	alice := func() *account.Account { return &account.Account{ID: 1, Name: "Alice", Balance: 100} }
	bob := func() *account.Account { return &account.Account{ID: 2, Name: "Bob", Balance: 700} }

	testCases := []struct {
		name        string
		from        *account.Account
		to          *account.Account
		amount      float64
		expected    float64
		expectedErr error
	}{
		{name: "success", from: alice(), to: bob(), amount: 50, expected: 50},
		{name: "nil sender", from: nil, to: bob(), amount: 50, expectedErr: account.ErrSenderNotFound},
		{name: "nil recipient", from: alice(), to: nil, amount: 50, expectedErr: account.ErrRecipientNotFound},
		{name: "same account", from: alice(), to: alice(), amount: 50, expectedErr: account.ErrCannotTransferToSameAccount},
		{name: "zero amount", from: alice(), to: bob(), amount: 0, expectedErr: account.ErrTransferAmountMustBePositive},
		{name: "infinite amount", from: alice(), to: bob(), amount: math.Inf(1), expectedErr: account.ErrTransferAmountMustBePositive},
		{name: "overdraw", from: alice(), to: bob(), amount: 1000, expectedErr: account.ErrInsufficientFundsTransfer},
		{
			name:        "recipient overflow",
			from:        &account.Account{ID: 1, Name: "Alice", Balance: math.MaxFloat64},
			to:          &account.Account{ID: 2, Name: "Bob", Balance: math.MaxFloat64},
			amount:      math.MaxFloat64 / 2,
			expectedErr: account.ErrBalanceOverflow,
		},
		{
			name:        "limit rejects",
			from:        &account.Account{ID: 3, Name: "Carl", Balance: 700, Limit: func(a, _, _ float64) bool { return a < 10 }},
			to:          bob(),
			amount:      20,
			expectedErr: account.ErrTransferLimit,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			updated, err := tc.from.ValidateTransfer(tc.to, tc.amount)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, updated)
		})
	}
}

func TestAccount_Snapshot(t *testing.T) {
	acc := &account.Account{ID: 7, Name: "Eve", Balance: 12.5}
	snap := acc.Snapshot()
	snap.Balance = 0

	assert.Equal(t, 12.5, acc.Balance)
	assert.False(t, snap.HasLimit())
}
