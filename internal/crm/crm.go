// Package crm mirrors locally committed customers and tickets into the
// external CRM integration service. Every call is attempted once and its
// failure is reported as a Result, never as an error.
package crm

import (
	"context"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Outcome classifies a single sync attempt.
type Outcome string

const (
	OutcomeSucceeded       Outcome = "succeeded"
	OutcomeUnreachable     Outcome = "unreachable"
	OutcomeTimedOut        Outcome = "timed_out"
	OutcomeRemoteRejected  Outcome = "remote_rejected"
	OutcomeTransportFailed Outcome = "transport_failed"
	OutcomeSkipped         Outcome = "skipped"
)

// Result is what the caller folds into its response.
type Result struct {
	Outcome         Outcome
	ExternalID      string
	LinkedToContact bool
	Reason          string
}

// OK reports whether the remote accepted the call.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSucceeded
}

// Failed reports whether the call was attempted and did not succeed.
func (r Result) Failed() bool {
	return r.Outcome != OutcomeSucceeded && r.Outcome != OutcomeSkipped
}

// Warning renders the advisory message shown to API clients, e.g.
// "Customer saved locally but CRM sync failed: CRM service unreachable".
func (r Result) Warning(entity string) string {
	var cause string
	switch r.Outcome {
	case OutcomeUnreachable:
		cause = "CRM service unreachable"
	case OutcomeTimedOut:
		cause = "CRM service timed out"
	case OutcomeRemoteRejected:
		cause = "CRM rejected the request"
		if r.Reason != "" {
			cause += ": " + r.Reason
		}
	case OutcomeTransportFailed:
		cause = "unexpected error"
		if r.Reason != "" {
			cause += ": " + r.Reason
		}
	default:
		return ""
	}
	return entity + " saved locally but CRM sync failed: " + cause
}

// Syncer pushes records to the CRM.
type Syncer interface {
	SyncCustomer(ctx context.Context, customer domain.Customer) Result
	// SyncTicket creates the remote ticket, linked by the customer's email.
	SyncTicket(ctx context.Context, ticket domain.Ticket, customer domain.Customer) Result
	// UpdateTicket patches the remote ticket identified by externalID.
	UpdateTicket(ctx context.Context, externalID string, ticket domain.Ticket) Result
}

// Disabled is used when no CRM is configured.
type Disabled struct{}

var _ Syncer = Disabled{}

func (Disabled) SyncCustomer(context.Context, domain.Customer) Result {
	return skipped()
}

func (Disabled) SyncTicket(context.Context, domain.Ticket, domain.Customer) Result {
	return skipped()
}

func (Disabled) UpdateTicket(context.Context, string, domain.Ticket) Result {
	return skipped()
}

func skipped() Result {
	return Result{Outcome: OutcomeSkipped, Reason: "crm sync disabled"}
}
