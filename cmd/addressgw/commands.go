// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/wneessen/addressgw/internal/config"
	"github.com/wneessen/addressgw/internal/geocode"
	"github.com/wneessen/addressgw/internal/logger"
	"github.com/wneessen/addressgw/internal/service"
)

const appName = "addressgw"

var errLookupFailed = errors.New("no authority returned a valid response")

func newRootCmd() *cobra.Command {
	var confPath string
	root := &cobra.Command{
		Use:   appName,
		Short: "Reverse geocoding gateway with randomized authority failover",
		Long: `addressgw resolves "lat,lng" coordinates into street addresses by asking a set of
reverse geocoding authorities in random order until one of them answers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&confPath, "config", "", "path to the config file")

	root.AddCommand(newServeCmd(&confPath), newLookupCmd(&confPath), newVersionCmd())
	return root
}

func newServeCmd(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(*confPath)
			if err != nil {
				return err
			}
			log := logger.New(conf.LogLevel)
			if conf.LogLevel > slog.LevelDebug {
				gin.SetMode(gin.ReleaseMode)
			}

			serv, err := service.New(conf, log)
			if err != nil {
				return fmt.Errorf("failed to initialize %s service: %w", appName, err)
			}

			log.Info("starting addressgw service", slog.String("version", version),
				slog.String("commit", commit), slog.String("date", date))
			if err = serv.Run(cmd.Context()); err != nil {
				return err
			}
			log.Info("shutting down addressgw service")
			return nil
		},
	}
}

func newLookupCmd(confPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "lookup <lat,lng>",
		Short:   "Resolve a single coordinate and print the result as JSON",
		Example: appName + " lookup 41.88391,-87.63845",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(*confPath)
			if err != nil {
				return err
			}
			serv, err := service.New(conf, logger.New(conf.LogLevel))
			if err != nil {
				return fmt.Errorf("failed to initialize %s service: %w", appName, err)
			}

			resp, lookupErr := serv.Lookup(cmd.Context(), args[0])
			if err = printJSON(cmd, resp); err != nil {
				return err
			}
			if lookupErr != nil {
				return lookupErr
			}
			if resp.Status == geocode.StatusFail {
				return errLookupFailed
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s (commit: %s, built: %s)\n", appName, version, commit, date)
		},
	}
}

func printJSON(cmd *cobra.Command, resp geocode.Response) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// loadConfig reads the config file given on the command line, or the first config file in
// one of the default locations. Without a config file only the environment is used.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		conf, err := config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		return conf, nil
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		conf, err := config.NewFromFile(path, file)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		return conf, nil
	}

	conf, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return conf, nil
}

func findConfigFile() (string, string) {
	var dirs []string
	if homedir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homedir, ".config", appName))
	}
	dirs = append(dirs, filepath.Join("/etc", appName))

	exts := []string{"toml", "yaml", "yml", "json"}
	for _, dir := range dirs {
		for _, ext := range exts {
			path := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(path); err == nil {
				return filepath.Dir(path), filepath.Base(path)
			}
		}
	}
	return "", ""
}
