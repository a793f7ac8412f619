package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/room-orders/internal/models"
)

// Bill is a room order rendered for display or printing.
// Money fields are already formatted with two decimals.
type Bill struct {
	Number     string     `json:"billNumber"`
	RoomNumber int        `json:"roomNumber"`
	IssuedAt   time.Time  `json:"issuedAt"`
	Lines      []BillLine `json:"lines"`
	ItemCount  int        `json:"itemCount"`
	Total      string     `json:"total"`
}

// BillLine is one line of a bill
type BillLine struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

// FormatMoney renders an amount with two decimals behind the currency symbol
func FormatMoney(amount decimal.Decimal, symbol string) string {
	return symbol + amount.StringFixed(2)
}

// NewBill renders order as a bill issued at issuedAt
func NewBill(order models.RoomOrder, symbol string, issuedAt time.Time) Bill {
	lines := make([]BillLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, BillLine{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Category:  item.Product.Category,
			Quantity:  item.Quantity,
			UnitPrice: FormatMoney(item.Product.Price, symbol),
			LineTotal: FormatMoney(item.LineTotal(), symbol),
		})
	}

	return Bill{
		Number:     uuid.New().String(),
		RoomNumber: order.RoomNumber,
		IssuedAt:   issuedAt.UTC(),
		Lines:      lines,
		ItemCount:  order.ItemCount(),
		Total:      FormatMoney(order.TotalAmount(), symbol),
	}
}

// Text renders the bill as a plain-text receipt
func (b Bill) Text() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Room %d\n", b.RoomNumber)
	fmt.Fprintf(&sb, "Bill %s\n", b.Number)
	fmt.Fprintf(&sb, "%s\n\n", b.IssuedAt.Format(time.RFC1123))

	if len(b.Lines) == 0 {
		sb.WriteString("No orders for this room.\n")
	}
	for _, line := range b.Lines {
		fmt.Fprintf(&sb, "%-24s %3d x %10s %10s\n", line.Name, line.Quantity, line.UnitPrice, line.LineTotal)
	}

	fmt.Fprintf(&sb, "\nTotal: %s\n", b.Total)
	return sb.String()
}

// BillPrinter sends a bill to a physical or virtual printer
type BillPrinter interface {
	Print(ctx context.Context, bill Bill) error
}

// LogPrinter "prints" bills into the structured log
type LogPrinter struct {
	logger *slog.Logger
}

// NewLogPrinter creates a printer writing to logger
func NewLogPrinter(logger *slog.Logger) *LogPrinter {
	return &LogPrinter{logger: logger}
}

// Print implements BillPrinter
func (p *LogPrinter) Print(ctx context.Context, bill Bill) error {
	p.logger.InfoContext(ctx, "bill sent to printer",
		slog.Int("room", bill.RoomNumber),
		slog.String("bill_number", bill.Number),
		slog.String("total", bill.Total),
		slog.String("receipt", bill.Text()),
	)
	return nil
}
