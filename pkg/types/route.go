package types

// Route is a main workflow definition: an HTTP-shaped entry point plus an
// ordered list of included steps.
type Route struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Method   string        `json:"method"`
	Response RouteResponse `json:"response"`
	Steps    []StepRef     `json:"steps"`
	File     string        `json:"file"`
}

// RouteResponse is the terminal response template declared by a route.
type RouteResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// StepRef is a single `- !include` reference inside a route file.
type StepRef struct {
	Ordinal int               `json:"ordinal"`
	Target  string            `json:"target"`
	Raw     string            `json:"raw"`
	Args    map[string]string `json:"args,omitempty"`
	Line    int               `json:"line"`
}
