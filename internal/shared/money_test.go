package shared

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want Money
	}{
		{"12.5", 12500},
		{"0.375", 375},
		{"100", 100000},
		{"-3.250", -3250},
		{".5", 500},
		{" 7.000 ", 7000},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "abc", "1.2345", "1.2.3"} {
		_, err := ParseMoney(bad)
		require.ErrorIs(t, err, ErrInvalidMoney, bad)
	}
}

func TestMoneyString(t *testing.T) {
	require.Equal(t, "12.500", Money(12500).String())
	require.Equal(t, "0.005", Money(5).String())
	require.Equal(t, "-3.250", Money(-3250).String())
	require.Equal(t, "0.000", Money(0).String())
}

func TestMoneyMulQty(t *testing.T) {
	// 10.500 * 5 = 52.500, exact in integer thousandths.
	require.Equal(t, Money(52500), Money(10500).MulQty(5))
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Money(12500))
	require.NoError(t, err)
	require.Equal(t, `"12.500"`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"0.375"`), &m))
	require.Equal(t, Money(375), m)
	require.NoError(t, json.Unmarshal([]byte(`7.5`), &m))
	require.Equal(t, Money(7500), m)
}
