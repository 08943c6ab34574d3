// Package models defines the persisted domain models for billsplit.
//
// A finalized bill is written once, together with one Payment per
// participant. After that only payment status changes:
//   - Bill: the composition and split settings a bill was finalized with
//   - Item: one line of an itemized bill
//   - Payment: what one participant owes on one bill, paid or pending
//   - BillSummary: a bill as listed for one user
//
// Participants are identified by opaque strings issued by the identity
// provider. Models reference each other by ID rather than by pointer.
package models
