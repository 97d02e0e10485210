/*
Package protocol implements the line-oriented event protocols that connect
tools to their callers: the one-way streaming driver and the bidirectional
session driver.

Both drivers serialize every event as a single JSON line on the primary
output and flush immediately, so a caller can react while the tool is still
running. The streaming driver drains a producer that only emits; the session
driver alternates strictly between emitting an event and reading one line of
JSON input, feeding it back into the producer.
*/
package protocol
