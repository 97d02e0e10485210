// Command noisy discovers cleanly but breaks the protocol on every call,
// printing free text where an envelope belongs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--discover" {
		fmt.Println(`{"name":"noisy","version":"0.0.1","tools":[{"name":"shout","summary":"Prints free text"}],"resources":[],"prompts":[]}`)
		return
	}
	fmt.Println("LOUD NOISES not json")
}
