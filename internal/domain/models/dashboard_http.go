package models

// Requests for dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type MapRequest struct {
	Metric string `query:"metric" json:"metric" default:"mean_value" validate:"oneof=mean_value growth_pct volatility_pct price_range"`
}

type ExtremesRequest struct {
	Metric string `query:"metric" json:"metric" default:"mean_value" validate:"oneof=mean_value growth_pct volatility_pct price_range"`
	N      int    `query:"n" json:"n" default:"10" validate:"gte=1,lte=60"`
}

type ForecastRequest struct {
	Series string `query:"series" json:"series" validate:"required,min=1,max=16"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
}

type ValidationRequest struct {
	Metric string `query:"metric" json:"metric" default:"mean_value" validate:"oneof=mean_value growth_pct volatility_pct price_range"`
}
