// Package webhook dispatches dossier jobs to the external workflow
// engine. The resolver decides which endpoint (test or production) a
// task type goes to based on stored configuration; the dispatcher
// assembles the payload from the analysis aggregate, signs the request
// with a vault-held secret, and performs exactly one bounded POST.
// Dispatch never mutates job state; interpreting the outcome is the
// caller's responsibility.
package webhook
