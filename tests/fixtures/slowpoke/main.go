// Command slowpoke hangs instead of answering discovery, standing in for
// a wedged tool executable.
package main

import "time"

func main() {
	time.Sleep(30 * time.Second)
}
