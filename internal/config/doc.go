// Package config provides configuration management for sheetclean.
//
// # Configuration Sources
//
// Configuration is layered in the following order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML file named by SHEETCLEAN_CONFIG_FILE, or sheetclean.yaml
//	3. Default values (lowest priority)
//
// A .env file can be loaded into the environment first with LoadDotEnv.
//
// # Environment Variables
//
// Variables follow the pattern SHEETCLEAN_<SECTION>_<FIELD>:
//
//	SHEETCLEAN_PATHS_INPUT=data.csv
//	SHEETCLEAN_LOGGING_LEVEL=debug
//	SHEETCLEAN_GENERATOR_ENABLED=true
//
// The spreadsheet and generator settings also accept their unprefixed names:
//
//	GOOGLE_CREDENTIALS_JSON={"type":"service_account",...}
//	SHEET_ID=1AbC...
//	STUDENT_NUMBER=28192
//
// # Remote Configuration
//
// Config.Remote returns either Configured or Unconfigured. Callers switch on
// the value once instead of re-checking the environment:
//
//	switch remote := cfg.Remote().(type) {
//	case config.Configured:
//	    client, err := sheets.NewFromCredentials(ctx, remote.Credentials, remote.SheetID, logger)
//	case config.Unconfigured:
//	    // local files only
//	}
package config
