package sheetsync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockledger/stockledger/internal/ledger"
)

func TestParseRows(t *testing.T) {
	csv := strings.Join([]string{
		"Item Code,Quantity",
		"A1,50",
		" B2 , 10 ",
		",5",
		"C3,notanumber",
		"D4",
		"E5,0",
	}, "\n")

	rows, err := parseRows(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, []ledger.StockUpdate{
		{ItemCode: "A1", Quantity: 50},
		{ItemCode: "B2", Quantity: 10},
		{ItemCode: "E5", Quantity: 0},
	}, rows)
}
