package model

// Weather 現在地の気象情報
type Weather struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"` // ℃
	FeelsLike   float64 `json:"feels_like"`  // ℃
	Humidity    int     `json:"humidity"`    // %
	Pressure    int     `json:"pressure"`    // hPa
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
	WindSpeed   float64 `json:"wind_speed"` // m/s
	WindDeg     int     `json:"wind_deg"`
	Visibility  int     `json:"visibility"` // m
	Clouds      int     `json:"clouds"`     // %
}
