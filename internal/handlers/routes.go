package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Credentials: deps.Credentials, Tokens: deps.Tokens, Limiter: deps.AuthLimiter}
	products := ProductHandler{Users: deps.Users, Products: deps.Products, Images: deps.Images, Uploader: deps.Uploader}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/sign-up", auth.SignUp)
	mux.HandleFunc("/api/login", auth.Login)
	mux.HandleFunc("/api/refresh", auth.Refresh)
	mux.HandleFunc("/api/product", products.Create)
	mux.HandleFunc("/api/product/{productId}", products.GetInfo)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Credentials CredentialVerifier
	Tokens      TokenIssuer
	Users       UserStore
	Products    ProductStore
	Images      ImageStore
	Uploader    ImageUploader
	AuthLimiter RateLimiter
}
