package domain

type MPG struct {
	City     int `json:"city,omitempty"`
	Highway  int `json:"highway,omitempty"`
	Combined int `json:"combined,omitempty"`
}

type VehicleSpecs struct {
	MPG           *MPG   `json:"mpg,omitempty"`
	Horsepower    int    `json:"horsepower,omitempty"`
	Torque        string `json:"torque,omitempty"`
	Seating       int    `json:"seating,omitempty"`
	FuelType      string `json:"fuelType,omitempty"`
	Engine        string `json:"engine,omitempty"`
	Transmission  string `json:"transmission,omitempty"`
	Drivetrain    string `json:"drivetrain,omitempty"`
	CargoSpace    string `json:"cargoSpace,omitempty"`
	SafetyRating  int    `json:"safetyRating,omitempty"`
	ElectricRange string `json:"electricRange,omitempty"`
	ChargingTime  string `json:"chargingTime,omitempty"`
}

// Vehicle is one catalog entry. Price is the current selling price used for
// financing quotes; MSRP is the sticker price shown alongside it.
type Vehicle struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Price      float64       `json:"price"`
	MSRP       float64       `json:"msrp"`
	Category   string        `json:"category"`
	Type       string        `json:"type"`
	Badges     []string      `json:"badges,omitempty"`
	Image      string        `json:"image,omitempty"`
	Year       int           `json:"year,omitempty"`
	PriceRange string        `json:"priceRange,omitempty"`
	Specs      *VehicleSpecs `json:"specifications,omitempty"`
	Features   []string      `json:"features,omitempty"`
	Warranty   string        `json:"warranty,omitempty"`
	BestFor    []string      `json:"bestFor,omitempty"`
	Pros       []string      `json:"pros,omitempty"`
	Cons       []string      `json:"cons,omitempty"`
}
