package services

import (
	"math"

	"menu_platform/internal/models"
)

// Pricing holds the derived financial fields of an order.
type Pricing struct {
	Subtotal    float64
	Tax         float64
	Tip         float64
	ServiceFee  float64
	DeliveryFee float64
	Discount    float64
	Total       float64
}

// PriceItems computes each item's subtotal in place,
// (unit_price + sum of customization prices) * quantity, and returns the sum.
func PriceItems(items []models.OrderItem) float64 {
	var subtotal float64
	for i := range items {
		quantity := items[i].Quantity
		if quantity == 0 {
			quantity = 1
		}
		var customizationTotal float64
		for _, c := range items[i].Customizations {
			customizationTotal += c.Price
		}
		items[i].Subtotal = (items[i].UnitPrice + customizationTotal) * float64(quantity)
		subtotal += items[i].Subtotal
	}
	return subtotal
}

// PriceOrder derives all financial fields from the items and rate inputs.
// A nil tax/tip means the caller supplied no explicit value.
//
// Tax precedence: a positive tax_rate always wins over an explicit tax; the
// caller's tax only stands when tax_rate is zero. A tip is only derived from
// tip_percentage when no explicit tip was given. A discount larger than the
// remaining terms yields a negative total; that is accepted, not an error.
func PriceOrder(items []models.OrderItem, taxRate, tipPercentage float64, tax, tip *float64, serviceFee, deliveryFee, discount float64) Pricing {
	p := Pricing{
		ServiceFee:  serviceFee,
		DeliveryFee: deliveryFee,
		Discount:    discount,
	}

	p.Subtotal = PriceItems(items)

	if taxRate > 0 {
		p.Tax = round2(p.Subtotal * taxRate)
	} else if tax != nil {
		p.Tax = *tax
	}

	if tipPercentage > 0 && tip == nil {
		p.Tip = round2(p.Subtotal * tipPercentage)
	} else if tip != nil {
		p.Tip = *tip
	}

	p.Total = p.Subtotal + p.Tax + p.Tip + p.ServiceFee + p.DeliveryFee - p.Discount
	return p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
