// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wneessen/addressgw/internal/geocode"
	"github.com/wneessen/addressgw/internal/logger"
)

const (
	paramLatLng = "latlng"

	MsgMissingLatLng = "Missing query parameters (latlng)"
	MsgInvalidLatLng = "Invalid latlng parameter, expected 'lat,lng' in decimal format"
)

type healthResponse struct {
	Status      string   `json:"status"`
	Authorities []string `json:"authorities"`
}

func (s *Server) addresses(c *gin.Context) {
	raw, ok := c.GetQuery(paramLatLng)
	if !ok {
		c.JSON(http.StatusBadRequest, geocode.ErrorResponse(MsgMissingLatLng))
		return
	}

	coord, err := s.validator.Parse(raw)
	if err != nil {
		log := s.logger.WithContext(c.Request.Context())
		var inputErr *geocode.InputError
		if errors.As(err, &inputErr) {
			log.Debug("rejected coordinate", slog.String(paramLatLng, raw), logger.Err(err))
			c.JSON(http.StatusBadRequest, geocode.ErrorResponse(inputErr.Message))
			return
		}
		log.Debug("malformed coordinate", slog.String(paramLatLng, raw), logger.Err(err))
		c.JSON(http.StatusBadRequest, geocode.ErrorResponse(MsgInvalidLatLng))
		return
	}

	c.JSON(http.StatusOK, s.resolver.Resolve(c.Request.Context(), coord))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Authorities: s.resolver.Authorities()})
}

func (s *Server) authorityStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authorities": s.stats.Snapshot()})
}
