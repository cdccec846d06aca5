// Package flow implements the verification session orchestrator: the
// step-gated state machine that collects applicant data, submits it to the
// verification provider, polls a disposable mailbox for the confirmation
// email and classifies the final outcome. Session and mailbox state live in
// the Store, timers in the Scheduler; both are owned exclusively by the
// Orchestrator.
package flow
