package sheetsync

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stockledger/stockledger/internal/ledger"
)

// CSVSource reads the sheet through its published CSV export. Column A is
// the item code, column B the quantity; the header row and malformed rows
// are skipped, matching the sheet's agreed layout.
type CSVSource struct {
	client *http.Client
}

// NewCSVSource builds CSVSource.
func NewCSVSource() *CSVSource {
	return &CSVSource{client: &http.Client{Timeout: 30 * time.Second}}
}

// Fetch downloads and parses the configured sheet.
func (s *CSVSource) Fetch(ctx context.Context, cfg SheetConfig) ([]ledger.StockUpdate, error) {
	url := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv&sheet=%s", cfg.SpreadsheetID, cfg.SheetName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sheet: unexpected status %d", resp.StatusCode)
	}
	return parseRows(resp.Body)
}

func parseRows(r io.Reader) ([]ledger.StockUpdate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	updates := []ledger.StockUpdate{}
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse sheet: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(record) < 2 {
			continue
		}
		code := strings.TrimSpace(record[0])
		qty, convErr := strconv.Atoi(strings.TrimSpace(record[1]))
		if code == "" || convErr != nil {
			continue
		}
		updates = append(updates, ledger.StockUpdate{ItemCode: code, Quantity: qty})
	}
	return updates, nil
}
