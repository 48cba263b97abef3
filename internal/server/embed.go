package server

import "embed"

// distFS holds the intro page and its script.
//
//go:embed all:dist
var distFS embed.FS
