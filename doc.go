/*
Package graft turns plain Go functions into command-line tools that speak
two protocols at once: ordinary flags for humans and a single JSON
argument for agent harnesses.

It implements a "one function, two callers" architecture: the registered
function stays oblivious to how it was invoked, while the dispatcher
normalizes both calling conventions into the same validated input model
and renders every outcome, success or failure, as a structured JSON
envelope on stdout.

# Concept

An App is a named registry of tools, resources and prompts plus the
dispatcher that exposes them. Each tool declares an input model (a struct
with json tags); graft derives the JSON Schema, validates and decodes
incoming parameters, and hands the typed value to the function. Agents
discover the whole surface with --discover, inspect one command with
--manifest, and check inputs without executing via --validate.

# Key Features

  - Dual protocol: --flag value pairs and a single JSON object are
    interchangeable on every command.
  - Three execution modes: direct request/response, line-JSON streaming
    (--stream), and interactive sessions (--session).
  - Structured failures: every error carries a stable code, a
    recoverable hint and an optional suggestion.
  - Reserved fields: working_dir, timeout and dry_run work uniformly
    across all typed tools.
  - Resources addressed by URI patterns, prompt templates, stderr
    notifications and an agent sampling channel.

# Usage

Register functions on an App, then hand control to Run.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/graft"
	)

	type AddInput struct {
		A int `json:"a" jsonschema:"description=First operand"`
		B int `json:"b" jsonschema:"description=Second operand"`
	}

	func main() {
		app := graft.New("calc", graft.WithVersion("1.0.0"))

		graft.Tool(app, "add", "Add two integers",
			func(ctx context.Context, in AddInput) (any, error) {
				return map[string]any{"sum": in.A + in.B}, nil
			})

		if err := app.Run(); err != nil {
			log.Fatal(err)
		}
	}

The resulting binary serves both callers:

	$ calc add --a 2 --b 3
	{"status":"success","result":{"sum":5}}

	$ calc add '{"a":2,"b":3}'
	{"status":"success","result":{"sum":5}}
*/
package graft
