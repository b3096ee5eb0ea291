package domain

import "time"

// Status classifies a sample against the watering threshold.
type Status string

const (
	StatusNormal Status = "Normal"
	StatusLow    Status = "Low"
)

// Sample is one humidity reading taken during a run.
type Sample struct {
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"ts"`
	Raw       int       `json:"raw"`
	Humidity  float64   `json:"humidity"`
	Status    Status    `json:"status"`
}

// Alert is the single watering notification a run may produce.
type Alert struct {
	Timestamp time.Time
	Sample    Sample
	Recipient string
	Subject   string
	Body      string
}
