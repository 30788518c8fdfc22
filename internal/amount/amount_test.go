package amount

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Split
// ---------------------------------------------------------------------------

func TestSplitMixedSeparators(t *testing.T) {
	assert.Equal(t, []string{"10", "20", "30"}, Split("10,20\n30"))
}

func TestSplitCollapsesRuns(t *testing.T) {
	assert.Equal(t, []string{"10", "20"}, Split(",10,,\n\n,20,"))
}

func TestSplitTrimsWhitespace(t *testing.T) {
	assert.Equal(t, []string{"1.5", "2.5", "3.5"}, Split("  1.5  \n  2.5  ,  3.5  "))
}

func TestSplitEmpty(t *testing.T) {
	assert.Empty(t, Split(""))
	assert.Empty(t, Split("   "))
	assert.Empty(t, Split(",,\n"))
}

// ---------------------------------------------------------------------------
// CalculateTotal
// ---------------------------------------------------------------------------

func TestCalculateTotal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"commas", "10,20,30", 60},
		{"comma decimals", "1.5,2.5,3.5", 7.5},
		{"newlines", "10\n20\n30", 60},
		{"mixed", "1.5\n2.5,3.5", 7.5},
		{"whitespace", " 10 , 20 , 30 ", 60},
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"only newlines", "\n\n", 0},
		{"only commas", ",,", 0},
		{"single", "42", 42},
		{"single padded", " 100 ", 100},
		{"empty entries", "10,,20", 30},
		{"leading and trailing separators", ",10,20,", 30},
		{"large", "1000000,2000000", 3000000},
		{"negative", "10,-5,3", 8},
		{"all negative", "-1,-2,-3", -6},
		{"junk prefix", "abc,10", 10},
		{"junk middle", "10,xyz,20", 30},
		{"only junk", "invalid", 0},
		{"words between", "10,20,hello,30,world", 60},
		{"js literals", "10, NaN, 20, undefined, 30", 60},
		{"null and blank", "1.5, null, 2.5, , 3.5", 7.5},
		{"currency symbols", "$10, 20€, 30£", 60},
		{"malformed decimal", "10.5.5, 20", 20},
		{"leading dot", ".5,.5", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateTotal(tt.input), 1e-9)
		})
	}
}

func TestCalculateTotalFloatRounding(t *testing.T) {
	assert.InDelta(t, 0.3, CalculateTotal("0.1,0.2"), 1e-9)
	assert.Equal(t, float64(4), CalculateTotal("1.99,2.01"))
}

func TestFormatTotal(t *testing.T) {
	assert.Equal(t, "0.3", FormatTotal(CalculateTotal("0.1,0.2")))
	assert.Equal(t, "30", FormatTotal(30))
	assert.Equal(t, "0", FormatTotal(0))
	assert.Equal(t, "-1.5", FormatTotal(-1.5))
}

func TestCalculateTotalIdempotent(t *testing.T) {
	in := "1.5\n2.5,abc,3.5"
	assert.Equal(t, CalculateTotal(in), CalculateTotal(in))
}

func TestCalculateTotalOrderIndependent(t *testing.T) {
	assert.InDelta(t, CalculateTotal("1,2,3,4.5"), CalculateTotal("4.5,3,2,1"), 1e-9)
}

// ---------------------------------------------------------------------------
// IsPositive
// ---------------------------------------------------------------------------

func TestIsPositive(t *testing.T) {
	assert.True(t, IsPositive("10"))
	assert.True(t, IsPositive("0.0001"))
	assert.False(t, IsPositive("0"))
	assert.False(t, IsPositive("0.000"))
	assert.False(t, IsPositive("-1"))
	assert.False(t, IsPositive(".5"))
	assert.False(t, IsPositive("1e5"))
	assert.False(t, IsPositive("abc"))
}

// ---------------------------------------------------------------------------
// ParseUnits / FormatUnits
// ---------------------------------------------------------------------------

func TestParseUnitsEighteenDecimals(t *testing.T) {
	got, err := ParseUnits("10", 18)
	require.NoError(t, err)
	want := new(big.Int).Mul(big.NewInt(10), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	assert.Equal(t, want, got)
}

func TestParseUnitsFraction(t *testing.T) {
	got, err := ParseUnits("1.5", 6)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000), got)
}

func TestParseUnitsZeroDecimals(t *testing.T) {
	got, err := ParseUnits("42", 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), got)
}

func TestParseUnitsNoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style drift would show up as ...0000004 with float scaling.
	got, err := ParseUnits("123456789.123456789123456789", 18)
	require.NoError(t, err)
	assert.Equal(t, "123456789123456789123456789", got.String())
}

func TestParseUnitsTrailingZerosWithinPrecision(t *testing.T) {
	got, err := ParseUnits("1.500000", 2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), got)
}

func TestParseUnitsTooPrecise(t *testing.T) {
	_, err := ParseUnits("1.234", 2)
	assert.ErrorIs(t, err, ErrTooPrecise)
}

func TestParseUnitsInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "0", "1.2.3"} {
		_, err := ParseUnits(in, 18)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1_500_000), 6))
	assert.Equal(t, "42", FormatUnits(big.NewInt(42), 0))
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestSum(t *testing.T) {
	assert.Equal(t, big.NewInt(30), Sum([]*big.Int{big.NewInt(10), big.NewInt(20)}))
	assert.Equal(t, 0, Sum(nil).Sign())
}
