// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates worker configuration.
//
// Configuration is layered with Koanf v2, highest priority last:
//
//  1. Defaults: sensible built-in values for every tunable.
//  2. Config file: optional YAML file (see DefaultConfigPaths, CONFIG_PATH).
//  3. Environment variables: override anything, including the three
//     required settings (WORKER_NAME, SPREADSHEET_ID, SERVICE_ACCOUNT_FILE).
//
// Call Load to get a validated *Config. Validate is exported separately so
// callers constructing a Config programmatically (tests, embedding
// programs) can validate without going through the environment.
package config
