// models/api_models.go
package models

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunResponse is the body of POST /api/admin/run/{stage}.
type RunResponse struct {
	Stage  string         `json:"stage"`
	Report PipelineReport `json:"report"`
}

// CourseDetailResponse is the body of GET /api/courses/{code}.
type CourseDetailResponse struct {
	Course        Course              `json:"course"`
	Prerequisites []string            `json:"prerequisites"`
	Grades        []GradeDistribution `json:"grades"`
}
