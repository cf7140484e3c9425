package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an HS256 bearer token for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		sub, _ := flags.GetString("sub")
		role, _ := flags.GetString("role")
		email, _ := flags.GetString("email")
		name, _ := flags.GetString("name")
		ttl, _ := flags.GetDuration("ttl")
		secret, _ := flags.GetString("secret")

		if secret == "" {
			secret = os.Getenv("JWT_SECRET")
		}
		if secret == "" {
			return errors.New("a secret is required (--secret or JWT_SECRET)")
		}
		if role != "" && authz.ParseGlobalRole(role) == authz.GlobalNone {
			return fmt.Errorf("unknown global role %q", role)
		}

		signed, err := mintToken(secret, sub, role, email, name, os.Getenv("JWT_ISSUER"), os.Getenv("JWT_AUDIENCE"), ttl, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("sub", "", "subject (user id)")
	tokenCmd.Flags().String("role", "", "global role claim (Admin or PM)")
	tokenCmd.Flags().String("email", "", "email claim")
	tokenCmd.Flags().String("name", "", "display name claim")
	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")
	tokenCmd.Flags().String("secret", "", "signing secret (default JWT_SECRET)")
	_ = tokenCmd.MarkFlagRequired("sub")
}

func mintToken(secret, sub, role, email, name, issuer, audience string, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	for key, value := range map[string]string{"role": role, "email": email, "name": name, "iss": issuer, "aud": audience} {
		if value != "" {
			claims[key] = value
		}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
