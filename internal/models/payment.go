package models

import "time"

// Order statuses as persisted on the enquiry record.
const (
	OrderStatusPending = "PENDING"
	OrderStatusPaid    = "PAID"
	OrderStatusFailed  = "FAILED"
)

// CheckoutConfig is the configuration handed to the hosted payment widget.
// The widget is a third-party component; this system only supplies
// configuration and consumes its callbacks.
type CheckoutConfig struct {
	KeyID       string `json:"keyId"`
	OrderID     string `json:"orderId"`
	AmountPaise int64  `json:"amount"` // smallest currency unit
	Currency    string `json:"currency"`
	Name        string `json:"name"`        // merchant display name
	Description string `json:"description"` // service interest shown on the widget
	PrefillName string `json:"prefillName"`
	PrefillMail string `json:"prefillEmail"`
	PrefillTel  string `json:"prefillContact"`
}

// PaymentVerification is the success callback body from the widget:
// order id, payment id and the gateway signature over both.
type PaymentVerification struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// WebhookPayload is the shape of a payment gateway webhook delivery.
type WebhookPayload struct {
	ID        string                 `json:"id"`
	Event     string                 `json:"event"`
	CreatedAt int64                  `json:"created_at"`
	Contains  []string               `json:"contains"`
	Payload   map[string]interface{} `json:"payload"`
}

// Transaction is a row in the admin transactions list.
type Transaction struct {
	ID              string      `json:"id"`
	EnquiryID       string      `json:"enquiryId"`
	OrderID         string      `json:"orderId"`
	PaymentID       *string     `json:"paymentId,omitempty"`
	Mode            EnquiryMode `json:"mode"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	ServiceInterest ServiceType `json:"serviceInterest"`
	AmountPaise     int64       `json:"amount"`
	Currency        string      `json:"currency"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// TransactionsPage is a paged transactions listing.
type TransactionsPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	PerPage      int           `json:"perPage"`
}
