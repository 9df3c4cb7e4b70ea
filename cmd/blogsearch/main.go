// Command blogsearch is the crawl/index/search CLI entrypoint.
package main

import (
	cmd "github.com/eng-universe/blogsearch/internal/cli"
)

func main() {
	cmd.Execute()
}
