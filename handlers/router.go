// handlers/router.go
package handlers

import "net/http"

// NewRouter wires the HTTP surface.
func NewRouter(admin *AdminHandler, courses *CourseHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", admin.Health)
	mux.HandleFunc("POST /api/admin/run/{stage}", admin.Run)
	if courses != nil {
		mux.HandleFunc("GET /api/courses/{code}", courses.Get)
	}
	return mux
}
