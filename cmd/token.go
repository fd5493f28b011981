package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/urfave/cli/v2"
)

// TokenCommand mints a long-lived sensor token signed with the shared API
// secret. The sensor client sends it as a bearer token on every POST.
func TokenCommand(ctx *cli.Context) error {
	secret := ctx.String("api-secret")
	if secret == "" {
		return errors.New("api-secret is required to mint tokens")
	}
	sensorID := ctx.String("sensor-id")
	if sensorID == "" {
		return errors.New("sensor-id is required")
	}

	token, err := MintToken(secret, sensorID, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, token)
	return nil
}

func MintToken(secret, sensorID string, issuedAt time.Time) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sensorID,
		"iat": issuedAt.Unix(),
	}).SignedString([]byte(secret))
}
