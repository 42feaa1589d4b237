package enums

// PaymentStatus tracks a gateway payment from session creation to confirmation.
// The stored values keep the capitalisation the storefront already reads.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusSuccess PaymentStatus = "Success"
)

var paymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusSuccess}

func (p PaymentStatus) String() string {
	return string(p)
}

func (p PaymentStatus) IsValid() bool {
	_, err := ParsePaymentStatus(string(p))
	return err == nil
}

// ParsePaymentStatus is case sensitive.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parse("payment status", value, paymentStatuses)
}
