package repository

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericToDecimal_Zero(t *testing.T) {
	v, err := NumericToDecimal(DecimalToNumeric(decimal.Zero))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestNumericToDecimal_RoundTrip(t *testing.T) {
	tests := []string{"0.5", "1", "12.345678901", "-3.25", "99999999999.999999999"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			d := decimal.RequireFromString(s)
			v, err := NumericToDecimal(DecimalToNumeric(d))
			require.NoError(t, err)
			assert.True(t, d.Equal(v), "want %s got %s", d, v)
		})
	}
}

func TestNumericToDecimal_PositiveExponent(t *testing.T) {
	n := pgtype.Numeric{Int: big.NewInt(25), Exp: 2, Valid: true}
	v, err := NumericToDecimal(n)
	require.NoError(t, err)
	assert.Equal(t, "2500", v.String())
}

func TestNumericToDecimal_Null(t *testing.T) {
	_, err := NumericToDecimal(pgtype.Numeric{Valid: false})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NULL")
}

func TestNumericToDecimal_NaN(t *testing.T) {
	_, err := NumericToDecimal(pgtype.Numeric{NaN: true, Valid: true})
	assert.Error(t, err)
}

func TestNumericToDecimal_Infinity(t *testing.T) {
	_, err := NumericToDecimal(pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true})
	assert.Error(t, err)
}
