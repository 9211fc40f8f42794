package dto

type Bounds struct {
	MinLon float64 `json:"min_lon" validate:"gte=-180,lte=180"`
	MinLat float64 `json:"min_lat" validate:"gte=-90,lte=90"`
	MaxLon float64 `json:"max_lon" validate:"gte=-180,lte=180,gtefield=MinLon"`
	MaxLat float64 `json:"max_lat" validate:"gte=-90,lte=90,gtefield=MinLat"`
}

type RegionRequest struct {
	Template string  `json:"template"`
	Ratio    float64 `json:"ratio" validate:"omitempty,gt=0"`
	Bounds   Bounds  `json:"bounds"`
	MinZoom  int     `json:"min_zoom" validate:"gte=0,lte=31"`
	MaxZoom  int     `json:"max_zoom" validate:"gte=0,lte=31,gtefield=MinZoom"`
}

type RegionResponse struct {
	Total      int64  `json:"total"`
	Cached     int64  `json:"cached"`
	Downloaded int64  `json:"downloaded"`
	Failed     int64  `json:"failed"`
	Duration   string `json:"duration"`
}
