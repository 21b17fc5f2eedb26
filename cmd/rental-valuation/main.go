package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/rental-valuation/internal/analysis"
	"github.com/iwvelando/rental-valuation/internal/config"
	"github.com/iwvelando/rental-valuation/internal/logging"
	"github.com/iwvelando/rental-valuation/pkg/constants"
	"github.com/iwvelando/rental-valuation/pkg/output"
	"github.com/iwvelando/rental-valuation/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	preset := flag.String("preset", "", "policy preset override (multi-family-fha, single-family-fha, down-payment-heuristic)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *preset != "" {
		conf.PolicySettings.Preset = *preset
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	results, err := analysis.Run(logger, *conf)
	if err != nil {
		logger.Fatal("failed to evaluate properties",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, results); err != nil {
		logger.Fatal("failed to write results",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
