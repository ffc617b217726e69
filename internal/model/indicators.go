package model

// Indicators holds the summary statistics shown next to the price preview.
// A zero MA means the series was too short for that window.
type Indicators struct {
	LastClose float64 `json:"last_close"`
	MA50      float64 `json:"ma50"`
	MA200     float64 `json:"ma200"`
	RSI14     float64 `json:"rsi14"`
	High52w   float64 `json:"high_52w"`
	Low52w    float64 `json:"low_52w"`
}
