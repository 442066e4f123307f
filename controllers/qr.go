package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_fleet_tool/app"
	"Gin_postgres_redis_fleet_tool/assetlink"

	"github.com/gin-gonic/gin"
)

const defaultLabelPx = 300

// publicOrigin 标签会被打印出去，只信任配置的 WEB_ORIGIN
func (s *Srv) publicOrigin() string {
	if s.Cfg.WebOrigin != "" {
		return s.Cfg.WebOrigin
	}
	return app.DefaultWebOrigin
}

// serveQR 输出指向 kind/id[suffix] 页面的二维码；?format=png 给标签打印机用
func (s *Srv) serveQR(c *gin.Context, kind string, id uint, suffix string) {
	url := assetlink.URL(s.publicOrigin(), kind, id) + suffix

	if c.Query("format") == "png" {
		size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultLabelPx)))
		if err != nil || size <= 0 || size > 2000 {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid size"})
			return
		}
		b, err := assetlink.PNG(url, size)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", b)
		return
	}

	b, err := assetlink.SVG(url)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", b)
}
