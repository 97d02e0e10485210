/*
Package registry stores tool, resource and prompt registrations for the
lifetime of the process.

A tool registration binds a command name to an invoker plus declarative
metadata: summary, description, JSON schema, streaming/session flags,
examples and tags. Resources bind URI patterns to handlers and are matched
in registration order; prompts bind names to template renderers. The
dispatcher resolves process arguments against a Registry and the discovery
surface is generated from it.
*/
package registry
