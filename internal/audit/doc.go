// Package audit records route history in the audit_logs table.
//
// Recorder implements routing.Listener and writes one row per route
// change (action "route" for commands, "feedback" for changes reported by
// a switcher), per switcher connectivity change and per preset recall
// (action "preset"). The API lists the
// rows through Repository.List.
package audit
