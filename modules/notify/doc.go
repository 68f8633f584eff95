// Package notify implements the session-aware notification dispatch engine.
//
// Email send requests enter through the Producer, travel the task queue,
// and are picked up by the Consumer, which resolves the audience and hands
// each target to the Service. The Service reads the owner's live session
// count from the session registry, decides whether the new record starts
// read or unread, persists it, and broadcasts to up to three per-user
// channels: full content, unread count, and a short summary. Live delivery
// is best effort; the persisted history is the source of truth.
//
// Storage backends: in-memory for tests, PostgreSQL, and MongoDB (records
// only). The HTTP surface exposes unread count, mark-read, history, and
// member lookup endpoints keyed by the X-USER header, plus the email
// enqueue endpoints and the websocket stream.
package notify
