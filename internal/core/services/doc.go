// Package services implements the driving port interfaces.
// Services contain the core business logic of the query engine:
// interpretation, routing, retrieval fan-out, synthesis and the
// knowledge lifecycle. They orchestrate calls to driven ports and
// degrade gracefully when optional collaborators are absent.
package services
