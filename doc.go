// Package notifyhub is a session-aware notification dispatch service.
//
// Notifications are persisted per member and broadcast to the member's live
// websocket sessions. Delivery shape depends on how many sessions the member
// has open: a single session receives an unread counter, a short summary, and
// the full record; multiple sessions receive only the full record, already
// marked read. Email requests arrive through a persistent task queue and fan
// out to admins or to a single member.
//
// The root package only carries the embedded SQL migrations. The service
// itself is assembled in cmd/notifyd from the modules and pkg trees.
package notifyhub
