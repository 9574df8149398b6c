package bot

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFormat   = errors.New("unknown print format")
	ErrUnknownDelivery = errors.New("unknown delivery method")
	ErrIncompleteOrder = errors.New("order is incomplete")
)

const (
	FormatSmall  = "10x15"
	FormatMedium = "15x21"
	FormatLarge  = "21x30"

	DeliveryPickup  = "pickup"
	DeliveryCourier = "delivery"
)

// Format is a print size with its price per photo in roubles.
type Format struct {
	Code  string
	Label string
	Price int
}

// DeliveryMethod is a way to receive prints with its surcharge in roubles.
type DeliveryMethod struct {
	Code  string
	Label string
	Extra int
}

var formats = []Format{
	{Code: FormatSmall, Label: "10×15 см", Price: 50},
	{Code: FormatMedium, Label: "15×21 см", Price: 90},
	{Code: FormatLarge, Label: "21×30 см", Price: 150},
}

var deliveryMethods = []DeliveryMethod{
	{Code: DeliveryPickup, Label: "🏃 Самовывоз", Extra: 0},
	{Code: DeliveryCourier, Label: "🚚 Доставка", Extra: 200},
}

func LookupFormat(code string) (Format, error) {
	for _, f := range formats {
		if f.Code == code {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, code)
}

func LookupDelivery(code string) (DeliveryMethod, error) {
	for _, d := range deliveryMethods {
		if d.Code == code {
			return d, nil
		}
	}
	return DeliveryMethod{}, fmt.Errorf("%w: %q", ErrUnknownDelivery, code)
}

// CalculateTotal returns photoCount*unitPrice + deliveryExtra.
func CalculateTotal(photoCount, unitPrice, deliveryExtra int) (int, error) {
	if photoCount <= 0 {
		return 0, fmt.Errorf("%w: no photos", ErrIncompleteOrder)
	}
	if unitPrice <= 0 {
		return 0, fmt.Errorf("%w: format not chosen", ErrIncompleteOrder)
	}
	if deliveryExtra < 0 {
		return 0, fmt.Errorf("%w: negative delivery extra %d", ErrIncompleteOrder, deliveryExtra)
	}
	return photoCount*unitPrice + deliveryExtra, nil
}
