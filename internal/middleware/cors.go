package middleware

import (
	"github.com/go-chi/cors"
)

// QuotaHeaders are the usage headers set on search responses; browsers only
// expose them to scripts when listed.
var QuotaHeaders = []string{
	"X-RateLimit-Limit-Day",
	"X-RateLimit-Remaining-Day",
	"X-RateLimit-Limit-Month",
	"X-RateLimit-Remaining-Month",
}

// CORS returns cors.Options parameterized by the given allowed origins.
// If "*" is present, AllowCredentials is set to false (browsers reject
// Access-Control-Allow-Credentials: true with a wildcard origin).
func CORS(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	allowCreds := true
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCreds = false
			break
		}
	}

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   append([]string{RequestIDHeader, "Retry-After"}, QuotaHeaders...),
		AllowCredentials: allowCreds,
		MaxAge:           300,
	}
}
