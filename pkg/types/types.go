package types

// Point is a pixel coordinate in image space.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// FocusResponse is the JSON body returned by GET /focus.
type FocusResponse struct {
	Focus       Point  `json:"focus"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Description string `json:"description,omitempty"`
}

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CropSpec defines the output of a focus-anchored crop.
type CropSpec struct {
	Width    int
	Height   int
	Format   string
	Quality  int
	Lossless bool
}
