// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the file and configuration formats shared by the
// peaks-engine packages: instrument definitions, peak files, and the
// engine configuration read through viper.
package types
