package stub

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates the stub service router with all routes configured.
func NewRouter(handler *Handler) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"docmorph-devserver"}`))
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/config", handler.GetConfig).Methods("GET")
	api.HandleFunc("/upload", handler.Upload).Methods("POST")
	api.HandleFunc("/convert", handler.Convert).Methods("POST")
	api.HandleFunc("/download/{id}", handler.Download).Methods("GET")
	api.HandleFunc("/session/{id}", handler.GetSession).Methods("GET")
	api.HandleFunc("/session/{id}/reset", handler.ResetSession).Methods("POST")

	// Browser clients served from dev front-end ports.
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:4173",
			"http://localhost:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return c.Handler(router)
}
