// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/wneessen/addressgw/internal/config"
	"github.com/wneessen/addressgw/internal/geocode"
	geocodeearth "github.com/wneessen/addressgw/internal/geocode/provider/geocode-earth"
	"github.com/wneessen/addressgw/internal/geocode/provider/googlemaps"
	"github.com/wneessen/addressgw/internal/geocode/provider/here"
	"github.com/wneessen/addressgw/internal/geocode/provider/opencage"
	nominatim "github.com/wneessen/addressgw/internal/geocode/provider/osm-nominatim"
	"github.com/wneessen/addressgw/internal/logger"
)

// selectAuthorities returns the enabled authorities in configuration order
func selectAuthorities(conf *config.Config, log *logger.Logger, lang language.Tag) ([]geocode.Authority, error) {
	var authorities []geocode.Authority
	auth := conf.Authorities

	if !auth.Google.Disable {
		google, err := googlemaps.New(log, lang, auth.Google.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Maps authority: %w", err)
		}
		authorities = append(authorities, google)
	}

	if !auth.Here.Disable {
		creds := here.Credentials{AppID: auth.Here.AppID, AppCode: auth.Here.AppCode}
		hereGeocoder, err := here.New(log, lang, creds, conf.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("failed to create HERE authority: %w", err)
		}
		authorities = append(authorities, hereGeocoder)
	}

	if auth.OpenCage.Enable {
		oc, err := opencage.New(log, lang, auth.OpenCage.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenCage authority: %w", err)
		}
		authorities = append(authorities, oc)
	}

	if auth.GeocodeEarth.Enable {
		ge, err := geocodeearth.New(log, lang, auth.GeocodeEarth.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create geocode.earth authority: %w", err)
		}
		authorities = append(authorities, ge)
	}

	if auth.Nominatim.Enable {
		authorities = append(authorities, nominatim.New(log, lang))
	}

	if len(authorities) == 0 {
		return nil, fmt.Errorf("no geocoding authorities enabled")
	}
	return authorities, nil
}
