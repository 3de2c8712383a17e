package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LogNotifier renders the summary as text and writes it to the log. It
// stands in for the outbound email/WhatsApp transport, which is not part
// of this service.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the rendered digest.
func (n *LogNotifier) Send(ctx context.Context, s SalesSummary) error {
	n.logger.Info("daily sales summary",
		slog.String("date", s.Date),
		slog.Int("totalItemsSold", s.TotalItemsSold),
		slog.String("totalRevenue", s.TotalRevenue.String()),
		slog.String("digest", Render(s)),
	)
	return nil
}

// Render formats the summary as a plain-text digest.
func Render(s SalesSummary) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	p.Fprintf(&b, "Daily Sales Summary for %s\n\n", s.Date)
	p.Fprintf(&b, "Total Items Sold: %d\n", s.TotalItemsSold)
	p.Fprintf(&b, "Total Revenue: KWD %s\n", s.TotalRevenue.String())

	if len(s.TopSellingItems) > 0 {
		b.WriteString("\nTop Sellers:\n")
		for i, item := range s.TopSellingItems {
			p.Fprintf(&b, "%d. %s (%s): %d units, KWD %s\n", i+1, item.Name, item.Code, item.QuantitySold, item.Revenue.String())
		}
	}
	if len(s.LowStockItems) > 0 {
		b.WriteString("\nLow Stock:\n")
		for _, item := range s.LowStockItems {
			fmt.Fprintf(&b, "- %s (%s): %d units left\n", item.Name, item.Code, item.AvailableQty)
		}
	}
	if len(s.NoSalesItems) > 0 {
		p.Fprintf(&b, "\nNo sales today: %d items\n", len(s.NoSalesItems))
	}
	return b.String()
}
