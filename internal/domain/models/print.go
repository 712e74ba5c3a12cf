package models

import "time"

// PrintFormat selects the paper width of a roller print.
type PrintFormat string

const (
	PrintThermal  PrintFormat = "thermal"
	PrintStandard PrintFormat = "standard"
)

// PrintRecord logs one roller print run. Records are append-only.
type PrintRecord struct {
	ID           string      `bson:"_id,omitempty" json:"id"`
	ClientIDs    []string    `bson:"clientIds" json:"clientIds"`
	PrintDate    time.Time   `bson:"printDate" json:"printDate"`
	Month        string      `bson:"month" json:"month"`
	Format       PrintFormat `bson:"format" json:"format"`
	TotalClients int         `bson:"totalClients" json:"totalClients"`
	TotalAmount  float64     `bson:"totalAmount" json:"totalAmount"`
	Details      string      `bson:"details" json:"details"`
}
