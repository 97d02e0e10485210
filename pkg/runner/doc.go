/*
Package runner implements the command dispatcher: it takes raw process
arguments, resolves them against a registry, and produces exactly one JSON
response on the primary output, or a stream of event lines for the
streaming and session modes.

It acts as the bridge between registered tools and the outside world.
The same registered function is reachable two ways: a human passes CLI
flags, an agent passes a single JSON object; both funnel into the same
validation, reserved-field handling and envelope rendering.

# Key Components

  - Runner: resolves arguments, picks the execution mode and renders
    envelopes. IO and the deadline mechanism are injectable.
  - Deadline: the timeout capability, with an in-process context
    implementation and a watchdog that force-exits the process.

# Usage

	r := runner.NewRunner("calc", "1.0.0", reg,
		runner.WithIO(os.Stdin, os.Stdout, os.Stderr),
	)

	if err := r.Run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
*/
package runner
