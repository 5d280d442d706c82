// Package config loads teamsbrief configuration from the environment.
//
// A .env file in the working directory is honoured for local development;
// variables already present in the environment always take precedence.
package config
