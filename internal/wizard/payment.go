package wizard

type PaymentMethod string

const (
	PaymentCryptomus PaymentMethod = "cryptomus"
	PaymentBinance   PaymentMethod = "binance"
	PaymentPayPal    PaymentMethod = "paypal"
	PaymentMpesa     PaymentMethod = "mpesa"
	PaymentStripe    PaymentMethod = "stripe"
)

// PaymentKind is how a method collects payment from the buyer.
type PaymentKind string

const (
	KindCryptoAddress PaymentKind = "crypto_address"
	KindRedirect      PaymentKind = "redirect"
	KindMobileMoney   PaymentKind = "mobile_money"
	KindCardForm      PaymentKind = "card_form"
)

type PaymentOption struct {
	Method       PaymentMethod
	Name         string
	Kind         PaymentKind
	Instructions string
}

var paymentOptions = []PaymentOption{
	{
		Method:       PaymentCryptomus,
		Name:         "Cryptomus",
		Kind:         KindCryptoAddress,
		Instructions: "Send the exact amount to the address below. The payment will be processed automatically.",
	},
	{
		Method:       PaymentBinance,
		Name:         "Binance Pay",
		Kind:         KindCryptoAddress,
		Instructions: "Scan the QR code with your Binance app to complete the payment.",
	},
	{
		Method:       PaymentPayPal,
		Name:         "PayPal",
		Kind:         KindRedirect,
		Instructions: "You will be redirected to PayPal to complete your payment.",
	},
	{
		Method:       PaymentMpesa,
		Name:         "M-Pesa",
		Kind:         KindMobileMoney,
		Instructions: "Enter your M-Pesa phone number to receive a payment prompt.",
	},
	{
		Method:       PaymentStripe,
		Name:         "Card",
		Kind:         KindCardForm,
		Instructions: "Enter your card details to pay.",
	},
}

// PaymentOptions lists the methods in display order.
func PaymentOptions() []PaymentOption {
	out := make([]PaymentOption, len(paymentOptions))
	copy(out, paymentOptions)
	return out
}

func LookupPaymentMethod(m PaymentMethod) (PaymentOption, bool) {
	for _, o := range paymentOptions {
		if o.Method == m {
			return o, true
		}
	}
	return PaymentOption{}, false
}
