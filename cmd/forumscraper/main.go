// Command forumscraper discovers, scrapes, and archives forum threads into
// a content-addressed compressed corpus plus a JSON manifest.
package main

import "github.com/speakleash/forumscraper/internal/cli"

func main() {
	cli.Execute()
}
