package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/receiptmatch/internal/http/auth"
)

var ttlFlag time.Duration

var tokenCmd = &cobra.Command{
	Use:         "token <subject>",
	Short:       "Issue a bearer token for the API",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{noApp: ""},
	RunE: func(_ *cobra.Command, args []string) error {
		if cfg.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}

		now := time.Now()

		token, err := auth.Issue([]byte(cfg.Auth.JWTSecret), args[0], jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttlFlag)),
			Issuer:    cfg.App.Name,
		})
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}

		fmt.Println(token)

		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&ttlFlag, "ttl", 30*24*time.Hour, "How long the token stays valid")
}
