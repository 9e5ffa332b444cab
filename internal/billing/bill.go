package billing

import "math"

// Charge policy, in integer rupees. The cart preview and the checkout page
// ship slightly different literals (free-delivery threshold and tax basis);
// both sites are kept as observed rather than unified.
const (
	FlatDeliveryFee = 40
	// Free delivery above this item total on the cart preview.
	PreviewFreeDeliveryMin = 500
	// Free delivery above this item total at checkout.
	CheckoutFreeDeliveryMin = 499
	PlatformFee             = 5
	TaxPercent              = 5
)

// Bill is the computed breakdown of charges for an item total.
type Bill struct {
	ItemTotal   int
	DeliveryFee int
	PlatformFee int
	Tax         int
	Discount    int
	GrandTotal  int
	// SubscriptionApplied marks the preview's savings banner; the preview
	// shows it without netting the discount out of the total.
	SubscriptionApplied bool
}

// FreeDelivery reports whether the delivery fee was waived.
func (b Bill) FreeDelivery() bool {
	return b.DeliveryFee == 0
}

// DiscountAmount converts a subscription discount percent into rupees off
// the given item total.
func DiscountAmount(itemTotal, discountPercent int) int {
	if itemTotal <= 0 || discountPercent <= 0 {
		return 0
	}
	return roundRupees(float64(itemTotal) * float64(discountPercent) / 100)
}

// Preview computes the cart page's bill. Tax applies to the full item total
// and an active subscription is only flagged for display; the preview grand
// total never nets the discount out.
func Preview(itemTotal int, discountApplied bool) Bill {
	if itemTotal < 0 {
		itemTotal = 0
	}

	deliveryFee := FlatDeliveryFee
	if itemTotal > PreviewFreeDeliveryMin {
		deliveryFee = 0
	}
	tax := roundRupees(float64(itemTotal) * TaxPercent / 100)

	return Bill{
		ItemTotal:           itemTotal,
		DeliveryFee:         deliveryFee,
		PlatformFee:         PlatformFee,
		Tax:                 tax,
		GrandTotal:          itemTotal + deliveryFee + PlatformFee + tax,
		SubscriptionApplied: discountApplied,
	}
}

// Quote computes the checkout page's bill. Tax applies to the discounted
// base and the payable amount is floored at zero, so a discount larger than
// the item total can never produce a negative charge.
func Quote(itemTotal, discount int) Bill {
	if itemTotal < 0 {
		itemTotal = 0
	}
	if discount < 0 {
		discount = 0
	}

	deliveryFee := FlatDeliveryFee
	if itemTotal > CheckoutFreeDeliveryMin {
		deliveryFee = 0
	}
	tax := roundRupees(float64(itemTotal-discount) * TaxPercent / 100)

	grand := itemTotal - discount + deliveryFee + tax + PlatformFee
	if grand < 0 {
		grand = 0
	}

	return Bill{
		ItemTotal:   itemTotal,
		DeliveryFee: deliveryFee,
		PlatformFee: PlatformFee,
		Tax:         tax,
		Discount:    discount,
		GrandTotal:  grand,
	}
}

func roundRupees(value float64) int {
	return int(math.Round(value))
}
