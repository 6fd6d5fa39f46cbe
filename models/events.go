package models

import "time"

// Payment lifecycle event types tracked by the monitoring engine.
const (
	EventPaymentCreated  = "payment_created"
	EventPaymentSuccess  = "payment_success"
	EventPaymentFailed   = "payment_failed"
	EventPaymentVerified = "payment_verified"
	EventPaymentRejected = "payment_rejected"
)

// PaymentEvent is an append-only telemetry record of one payment lifecycle
// transition.
type PaymentEvent struct {
	ID            string            `bson:"id" json:"id"`
	EventType     string            `bson:"event_type" json:"event_type"`
	BookingID     string            `bson:"booking_id" json:"booking_id"`
	UserID        string            `bson:"user_id" json:"user_id"`
	Amount        float64           `bson:"amount" json:"amount"`
	PaymentMethod string            `bson:"payment_method" json:"payment_method"`
	Timestamp     time.Time         `bson:"timestamp" json:"timestamp"`
	Metadata      map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// DailyMetrics is one aggregate row per calendar date, incremented
// atomically by each tracked event.
type DailyMetrics struct {
	Date        string  `bson:"date" json:"date"` // "YYYY-MM-DD"
	Created     int64   `bson:"created" json:"created"`
	Successful  int64   `bson:"successful" json:"successful"`
	Failed      int64   `bson:"failed" json:"failed"`
	Verified    int64   `bson:"verified" json:"verified"`
	Rejected    int64   `bson:"rejected" json:"rejected"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`
}

// MetricsSummary is the aggregate over a date range, with derived rates.
type MetricsSummary struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Created       int64   `json:"created"`
	Successful    int64   `json:"successful"`
	Failed        int64   `json:"failed"`
	Verified      int64   `json:"verified"`
	Rejected      int64   `json:"rejected"`
	TotalAmount   float64 `json:"totalAmount"`
	SuccessRate   float64 `json:"successRate"`
	AverageAmount float64 `json:"averageAmount"`
}

// AnomalyReport flags statistical anomalies in recent payment activity.
// Anomalies are reported, never auto-remediated.
type AnomalyReport struct {
	HighFailureRate   bool     `json:"highFailureRate"`
	UnusualAmounts    bool     `json:"unusualAmounts"`
	DuplicatePayments bool     `json:"duplicatePayments"`
	SlowProcessing    bool     `json:"slowProcessing"`
	Details           []string `json:"details,omitempty"`
}
