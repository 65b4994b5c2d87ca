// Package http provides HTTP handlers and middleware for the room
// availability dashboard API.
//
// The router exposes the following endpoints:
//   - GET /health: liveness probe.
//   - GET /api/rooms, POST /api/rooms, GET|PUT|DELETE /api/rooms/{number}: room
//     catalog exchanging the `roomDTO` payload defined in room_handler.go. Listing
//     accepts `floor`, `type` and `zone` filters.
//   - GET /api/room-types, POST /api/room-types, PUT|DELETE /api/room-types/{id}.
//   - GET /api/schedules: every room's entries keyed by room number.
//   - GET|PUT /api/schedules/{room}: read or replace one room's entries. Responses
//     carry the list version in an `ETag` header; mutations honour `If-Match`.
//   - POST /api/schedules/{room}/entries: add a date range.
//   - PUT /api/schedules/{room}/days/{date}: set the status of a single day.
//   - DELETE /api/schedules/{room}/entries/{id}: remove an entry.
//   - POST /api/schedules/{room}/recurring: apply a recurring rule.
//   - GET /api/schedules/{room}/calendar.ics: iCalendar export.
//   - GET /api/timeline, GET /api/timeline.xlsx: resolved statuses per room and day.
//   - GET /api/activity: audit trail, newest first.
//
// Validation failures answer 422 with a field map, overlaps 409 with the
// conflicting entry, stale versions 412 and unknown resources 404. A schedule
// change whose audit record could not be written still answers 200 with
// `audit_logged` set to false.
package http
