package order

import (
	"strings"

	"gathr/internal/entities"
	"github.com/google/uuid"
)

const maxLabelLength = 64

func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isValidLabel(label string) bool {
	label = strings.TrimSpace(label)
	return label != "" && len(label) <= maxLabelLength
}

func validateCheckout(checkout entities.Checkout) error {
	if checkout.AddressID == "" || checkout.ShopID == "" || len(checkout.Lines) == 0 {
		return ErrMissingRequiredFields
	}
	if !IsValidID(checkout.AddressID) {
		return ErrAddressNotFound
	}
	if !checkout.PaymentMethod.IsValid() {
		return ErrInvalidPaymentMethod
	}
	for _, line := range checkout.Lines {
		if line.ItemID == "" {
			return ErrMissingRequiredFields
		}
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// mergeLines схлопывает повторяющиеся позиции, сохраняя порядок первого вхождения.
func mergeLines(lines []entities.CartLine) []entities.CartLine {
	index := make(map[string]int, len(lines))
	merged := make([]entities.CartLine, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ItemID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}
