/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads entityodm settings from YAML, .env files and the
// environment, and builds the zap logger they describe.
package config
