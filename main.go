package main

// hitodl downloads a gallery into the workspace and keeps the category
// index up to date. See cli/ for the command surface.
//
// Package structure:
// - cli/          : root command, flags, run orchestration
// - config/       : settings (flags > env > defaults), workspace bootstrap
// - sites/        : site plugins and address resolution
// - downloader/   : HTTP, manifest and browser clients, metadata fetcher, download engine
// - translations/ : name translation cache and operator prompts
// - library/      : gallery directories and _info.yml
// - index/        : category symlinks

import (
	"hitodl/cli"
)

func main() {
	cli.Execute()
}
