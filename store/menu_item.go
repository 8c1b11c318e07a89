package store

type MenuItem struct {
	ID           int32
	RestaurantID int32
	Name         string
	Category     string
	Price        float64
	Vegetarian   bool
	Customizable bool

	// Presentation-only fields. These are served to the browse UI but are
	// stripped before any menu is embedded in an LLM prompt.
	ImageURL       string
	DisplayPrice   string
	Customization  string // JSON blob of customization options
	HealthScore    int32
	SweetnessScore int32
	CaffeineScore  int32
	Available      bool

	CreatedTs int64
	UpdatedTs int64
}

type FindMenuItem struct {
	ID           *int32
	RestaurantID *int32
	Category     *string
	Vegetarian   *bool
	Available    *bool
}

type UpdateMenuItem struct {
	ID           int32
	Name         *string
	Category     *string
	Price        *float64
	Available    *bool
	UpdatedTs    *int64
}

type DeleteMenuItem struct {
	ID           *int32
	RestaurantID *int32
}
