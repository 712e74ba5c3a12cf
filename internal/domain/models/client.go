package models

// Client is a tiffin subscriber together with the rate card used for billing.
type Client struct {
	ID                    string  `bson:"_id,omitempty" json:"id"`
	Name                  string  `bson:"name" json:"name" validate:"required,max=120"`
	Email                 string  `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Mobile                string  `bson:"mobile" json:"mobile" validate:"max=20"`
	LunchCost             float64 `bson:"lunchCost" json:"lunchCost" validate:"gte=0"`
	DinnerCost            float64 `bson:"dinnerCost" json:"dinnerCost" validate:"gte=0"`
	Discount              float64 `bson:"discount" json:"discount" validate:"gte=0,lte=100"`
	RemindersEnabled      bool    `bson:"remindersEnabled" json:"remindersEnabled"`
	CustomQuantityEnabled bool    `bson:"customQuantityEnabled" json:"customQuantityEnabled"`
}

// Snapshot copies the billing relevant fields of the client.
func (c Client) Snapshot() ClientSnapshot {
	return ClientSnapshot{
		ID:         c.ID,
		Name:       c.Name,
		Mobile:     c.Mobile,
		LunchCost:  c.LunchCost,
		DinnerCost: c.DinnerCost,
		Discount:   c.Discount,
	}
}
