package main

import (
	"flag" // Command line flags
	"fmt"  // Output
	"fortune_gateway/internal/config"
	"fortune_gateway/internal/utils"

	"github.com/sirupsen/logrus"
)

// Mints a bearer token for local development against the gateway.
func main() {
	userID := flag.String("user", "", "user id for the token")
	role := flag.String("role", "customer", "role claim: customer, fortune_teller or admin")
	flag.Parse()

	if *userID == "" {
		logrus.Fatal("-user is required")
	}

	cfg := config.LoadConfig() // Load configuration
	token, err := utils.GenerateJWT(*userID, *role, cfg.JWTSecret)
	if err != nil {
		logrus.Fatalf("failed to generate token: %v", err)
	}
	fmt.Println(token)
}
