/*
Package domain contains the wire-level value types of the graft protocol.

It defines the response envelope, the structured error taxonomy, the
stream/session event unions, and the manifest records used for discovery.
This package is kept pure and free of I/O so every other layer (dispatcher,
drivers, adapters) can share the same vocabulary without import cycles.

# Key Entities

  - Response: the outer {status, ...} JSON wrapper around every direct result.
  - Error: a structured failure with a code, a static recoverability default,
    and an optional suggestion and context.
  - StreamEvent / SessionEvent: the line-oriented event unions for the
    streaming and session execution modes.
  - Manifest: the discovery description of an app's tools, resources and
    prompts.
*/
package domain
