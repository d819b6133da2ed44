package main

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMountSwagger_HostIgnoresRequestHeaders(t *testing.T) {
	app := fiber.New()
	mountSwagger(app, "vault.example.com")

	var g errgroup.Group
	for _, host := range []string{"evil.example.com", "other:9000", "vault.example.com"} {
		g.Go(func() error {
			req := httptest.NewRequest("GET", "/swagger/doc.json", nil)
			req.Host = host
			resp, err := app.Test(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			var doc struct {
				Host string `json:"host"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
				return err
			}
			if doc.Host != "vault.example.com" {
				return fmt.Errorf("request with Host %s got doc host %q", host, doc.Host)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
