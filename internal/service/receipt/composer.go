package receipt

import (
	"fmt"
	"strings"
	"time"

	"gathr/internal/entities"
	"gathr/pkg/geo"

	"github.com/shopspring/decimal"
)

// Composer - единственное место, где считаются суммы заказа. Им пользуются и оформление,
// и checkout-сессия, и закрытие доставки, поэтому суммы не расходятся между этапами.
type Composer struct {
	fees     FeeCalculator
	taxRate  decimal.Decimal
	currency string
}

func New(fees FeeCalculator, taxRate, currency string) (*Composer, error) {
	rate := decimal.Zero
	if strings.TrimSpace(taxRate) != "" {
		parsed, err := decimal.NewFromString(taxRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTaxRate, taxRate, err)
		}
		rate = parsed
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: %s must be in [0, 1)", ErrInvalidTaxRate, rate)
	}

	return &Composer{
		fees:     fees,
		taxRate:  rate,
		currency: strings.ToLower(currency),
	}, nil
}

// Quote считает подытог по ценам снимка, налог с подытога (округление до целой
// минимальной единицы, половина вверх) и тариф по расстоянию магазин -> адрес.
func (c *Composer) Quote(items []entities.CartItem, shop, destination geo.Point) (entities.Charges, error) {
	if len(items) == 0 {
		return entities.Charges{}, ErrEmptyCart
	}

	distance, err := geo.Distance(shop, destination)
	if err != nil {
		return entities.Charges{}, err
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}

	tax := decimal.NewFromInt(subtotal).Mul(c.taxRate).Round(0).IntPart()
	fee := c.fees.CalculateFee(distance)

	return entities.Charges{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: fee,
		Total:       subtotal + tax + fee,
		DistanceKm:  distance,
		Currency:    c.currency,
	}, nil
}

func (c *Composer) Compose(order *entities.Order, cart *entities.Cart, deliveredAt time.Time) *entities.Receipt {
	lines := make([]entities.ReceiptLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, entities.ReceiptLine{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.LineTotal(),
		})
	}

	return &entities.Receipt{
		OrderID:       order.ID,
		Lines:         lines,
		Charges:       order.Charges,
		PaymentMethod: order.PaymentMethod,
		AmountPaid:    order.AmountPaid,
		DeliveredAt:   deliveredAt,
	}
}

// Render собирает тему и текст письма с чеком.
func (c *Composer) Render(receipt *entities.Receipt) (string, string) {
	currency := strings.ToUpper(receipt.Charges.Currency)
	if currency == "" {
		currency = strings.ToUpper(c.currency)
	}
	money := func(amount int64) string {
		return decimal.New(amount, -2).StringFixed(2) + " " + currency
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order %s delivered at %s\n\n", receipt.OrderID, receipt.DeliveredAt.UTC().Format(time.RFC1123))
	for _, line := range receipt.Lines {
		fmt.Fprintf(&b, "%s x%d @ %s = %s\n", line.Name, line.Quantity, money(line.UnitPrice), money(line.Total))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", money(receipt.Charges.Subtotal))
	fmt.Fprintf(&b, "Tax: %s\n", money(receipt.Charges.Tax))
	fmt.Fprintf(&b, "Delivery (%.2f km): %s\n", receipt.Charges.DistanceKm, money(receipt.Charges.DeliveryFee))
	fmt.Fprintf(&b, "Total: %s\n", money(receipt.Charges.Total))
	fmt.Fprintf(&b, "Paid (%s): %s\n", receipt.PaymentMethod, money(receipt.AmountPaid))

	return fmt.Sprintf("Your receipt for order %s", receipt.OrderID), b.String()
}
