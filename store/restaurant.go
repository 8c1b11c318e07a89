package store

type Restaurant struct {
	ID          int32
	UID         string
	Name        string
	Description string
	Category    string
	Address     string
	Latitude    float64
	Longitude   float64
	OpeningHours string
	Rating      float64
	RowStatus   RowStatus
	CreatedTs   int64
	UpdatedTs   int64
}

type FindRestaurant struct {
	ID        *int32
	UID       *string
	Category  *string
	RowStatus *RowStatus

	// Near filters restaurants within RadiusMeters of the given coordinates.
	Near         *Coordinates
	RadiusMeters float64

	Limit *int
}

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

type UpdateRestaurant struct {
	ID           int32
	Name         *string
	Description  *string
	Category     *string
	Address      *string
	OpeningHours *string
	Rating       *float64
	RowStatus    *RowStatus
	UpdatedTs    *int64
}

type DeleteRestaurant struct {
	ID int32
}
