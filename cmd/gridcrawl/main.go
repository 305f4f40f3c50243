// Command gridcrawl is the entrypoint for every process role in the
// distributed crawler: dispatching crawl tasks, running a worker,
// monitoring cluster health, and serving the search API.
package main

import (
	cmd "github.com/rohmanhakim/gridcrawl/internal/cli"
)

func main() {
	cmd.Execute()
}
