package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"careerpath-backend/config"
	"careerpath-backend/controllers/authentication"
	profilectl "careerpath-backend/controllers/profile"
	"careerpath-backend/controllers/recommendations"
	"careerpath-backend/models/profile"
	"careerpath-backend/models/recommend"
	"careerpath-backend/models/users"
	"careerpath-backend/services"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := config.InitLogger(); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	if err := config.InitDB(); err != nil {
		config.Log.Fatalw("failed to initialize database", "error", err)
	}

	err := config.DB.AutoMigrate(
		&users.User{},
		&profile.Profile{},
		&recommend.CareerRecommendation{},
	)
	if err != nil {
		config.Log.Fatalw("failed to migrate database", "error", err)
	}

	sqlDB, err := config.DB.DB()
	if err != nil {
		config.Log.Fatalw("failed to get database handle", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		config.Log.Fatalw("failed to ping database", "error", err)
	}
	config.Log.Infow("database connection established")

	store := &recommend.Store{DB: config.DB}
	pipeline := services.NewPipeline(services.NewGatewayClient(), store, config.Log)
	recs := recommendations.NewHandler(pipeline, store)

	mux := http.NewServeMux()

	mux.HandleFunc("/register", authentication.Register)
	mux.HandleFunc("/login", authentication.Login)
	mux.HandleFunc("/login/google", authentication.HandleGoogleLogin)
	mux.HandleFunc("/callback/google", authentication.HandleGoogleCallback)

	mux.HandleFunc("/profile", profilectl.Get)
	mux.HandleFunc("/profile/update", profilectl.Update)
	mux.HandleFunc("/profile/skills", profilectl.Skills)
	mux.HandleFunc("/profile/interests", profilectl.Interests)
	mux.HandleFunc("/profile/industries", profilectl.Industries)

	mux.HandleFunc("/recommendations/generate", recs.Generate)
	mux.HandleFunc("/recommendations/latest", recs.Latest)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := sqlDB.Ping(); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)

	port := config.Port()
	config.Log.Infow("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		config.Log.Fatalw("server stopped", "error", err)
	}
}
