package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"RetentionSentinel/internal/model"
)

// Accepted header names per field. Lookups ignore case, spaces,
// underscores and dashes.
var (
	customerIDHeaders     = []string{"customer_id", "restaurant_id", "client_id", "Restaurant ID"}
	customerNameHeaders   = []string{"customer_name", "name", "Restaurant", "client"}
	orderDateHeaders      = []string{"order_date", "Date de commande", "date"}
	totalHeaders          = []string{"total", "amount", "revenue", "montant"}
	orderStatusHeaders    = []string{"order_status", "Statut commande", "status"}
	paymentStatusHeaders  = []string{"payment_status", "Statut paiement"}
	channelHeaders        = []string{"channel", "Canal"}
	firstOrderDateHeaders = []string{"first_order_date", "date 1ere commande (Restaurant)", "date 1ere commande"}
	accountManagerHeaders = []string{"account_manager", "Owner email", "owner"}
	countryHeaders        = []string{"country", "Pays"}
	regionHeaders         = []string{"region", "Région", "zone"}
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// CSVSource reads the order export from a CSV file.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a CSV source for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string { return "csv:" + s.Path }

func (s *CSVSource) Load(ctx context.Context) (Batch, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return Batch{}, err
	}
	defer file.Close()
	return ReadCSV(ctx, file)
}

// ReadCSV parses an order export. Rows with no customer id, an unparseable
// order date or an unparseable total are skipped and counted as invalid.
func ReadCSV(ctx context.Context, r io.Reader) (Batch, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return Batch{}, fmt.Errorf("unable to read header: %w", err)
	}
	colMap := normalizeHeaders(headers)

	idIdx, ok := findColumn(colMap, customerIDHeaders)
	if !ok {
		return Batch{}, errors.New("missing customer id column")
	}
	dateIdx, ok := findColumn(colMap, orderDateHeaders)
	if !ok {
		return Batch{}, errors.New("missing order date column")
	}
	totalIdx, ok := findColumn(colMap, totalHeaders)
	if !ok {
		return Batch{}, errors.New("missing total column")
	}
	nameIdx, _ := findColumn(colMap, customerNameHeaders)
	orderStatusIdx, _ := findColumn(colMap, orderStatusHeaders)
	paymentStatusIdx, _ := findColumn(colMap, paymentStatusHeaders)
	channelIdx, _ := findColumn(colMap, channelHeaders)
	firstIdx, _ := findColumn(colMap, firstOrderDateHeaders)
	managerIdx, _ := findColumn(colMap, accountManagerHeaders)
	countryIdx, _ := findColumn(colMap, countryHeaders)
	regionIdx, _ := findColumn(colMap, regionHeaders)

	var batch Batch
	for line := 0; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return Batch{}, err
			}
		}
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Batch{}, fmt.Errorf("unable to read CSV: %w", err)
		}
		if len(record) == 0 {
			continue
		}

		o := model.Order{
			CustomerID:     getValue(record, idIdx),
			CustomerName:   getValue(record, nameIdx),
			OrderStatus:    getValue(record, orderStatusIdx),
			PaymentStatus:  getValue(record, paymentStatusIdx),
			Channel:        getValue(record, channelIdx),
			AccountManager: getValue(record, managerIdx),
			Country:        getValue(record, countryIdx),
			Region:         getValue(record, regionIdx),
		}
		if o.CustomerID == "" {
			batch.Invalid++
			continue
		}
		if o.OrderDate, err = parseDate(getValue(record, dateIdx)); err != nil {
			batch.Invalid++
			continue
		}
		if o.Total, err = parseAmount(getValue(record, totalIdx)); err != nil {
			batch.Invalid++
			continue
		}
		if raw := getValue(record, firstIdx); raw != "" {
			if o.FirstOrderDate, err = parseDate(raw); err != nil {
				batch.Invalid++
				continue
			}
		}
		batch.Orders = append(batch.Orders, o)
	}
	return batch, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// parseAmount accepts a dot or a lone comma as decimal separator.
func parseAmount(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if !strings.Contains(value, ".") && strings.Count(value, ",") == 1 {
		value = strings.Replace(value, ",", ".", 1)
	}
	return strconv.ParseFloat(value, 64)
}

func normalizeHeaders(headers []string) map[string]int {
	result := make(map[string]int, len(headers))
	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if _, exists := result[normalized]; !exists {
			result[normalized] = idx
		}
	}
	return result
}

func normalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(value, "\ufeff")))
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "_", "")
	value = strings.ReplaceAll(value, "-", "")
	return value
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, true
		}
	}
	return -1, false
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
