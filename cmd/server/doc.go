// Package main is the entry point for the codescore evaluation server.
//
// The server runs ML code submissions in a timed sandbox, scores them for
// correctness and four keyword heuristics, and keeps the reports in Redis
// or in memory. It is reachable over a REST API and as Model Context
// Protocol tools, over stdio or HTTP.
//
// The application uses Uber's fx framework for dependency injection and lifecycle
// management, with zap for structured logging and viper for configuration.
package main
