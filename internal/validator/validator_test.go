package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Currency string          `validate:"omitempty,iso4217"`
	Type     string          `validate:"omitempty,transaction_type"`
	Amount   decimal.Decimal `validate:"decimal_gt0"`
	Delta    decimal.Decimal `validate:"decimal_nonzero"`
}

func newValidate() *validator.Validate {
	v := validator.New()
	RegisterOn(v)
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newValidate()
	valid := sample{Currency: "IDR", Type: "expense", Amount: decimal.NewFromInt(10), Delta: decimal.NewFromInt(-5)}

	tests := []struct {
		name    string
		mutate  func(s *sample)
		wantErr bool
	}{
		{name: "valid", mutate: func(s *sample) {}},
		{name: "unknown_currency", mutate: func(s *sample) { s.Currency = "XYZ" }, wantErr: true},
		{name: "lowercase_currency", mutate: func(s *sample) { s.Currency = "idr" }, wantErr: true},
		{name: "transfer_type", mutate: func(s *sample) { s.Type = "transfer" }, wantErr: true},
		{name: "income_type", mutate: func(s *sample) { s.Type = "income" }},
		{name: "zero_amount", mutate: func(s *sample) { s.Amount = decimal.Zero }, wantErr: true},
		{name: "negative_amount", mutate: func(s *sample) { s.Amount = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "fractional_amount", mutate: func(s *sample) { s.Amount = decimal.RequireFromString("0.01") }},
		{name: "amount_below_money_scale", mutate: func(s *sample) { s.Amount = decimal.RequireFromString("0.00001") }, wantErr: true},
		{name: "amount_trailing_zeros", mutate: func(s *sample) { s.Amount = decimal.RequireFromString("1.50000") }},
		{name: "amount_too_large", mutate: func(s *sample) { s.Amount = decimal.New(1, 16) }, wantErr: true},
		{name: "delta_below_money_scale", mutate: func(s *sample) { s.Delta = decimal.RequireFromString("-0.00001") }, wantErr: true},
		{name: "zero_delta", mutate: func(s *sample) { s.Delta = decimal.Zero }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := v.Struct(s)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsCurrency(t *testing.T) {
	assert.True(t, IsCurrency("IDR"))
	assert.True(t, IsCurrency("USD"))
	assert.False(t, IsCurrency(""))
	assert.False(t, IsCurrency("RUPIAH"))
}
