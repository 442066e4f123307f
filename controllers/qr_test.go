package controllers

import (
	"testing"

	"Gin_postgres_redis_fleet_tool/app"

	"github.com/stretchr/testify/assert"
)

func TestPublicOriginUsesConfigOnly(t *testing.T) {
	s := &Srv{Cfg: app.Config{WebOrigin: "https://fleet.example"}}
	assert.Equal(t, "https://fleet.example", s.publicOrigin())

	s.Cfg.WebOrigin = ""
	assert.Equal(t, app.DefaultWebOrigin, s.publicOrigin())
}
