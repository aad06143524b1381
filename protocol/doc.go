// Package protocol defines the messages exchanged between the editor core and
// its host.
//
// Every message is one JSON object whose "command" field names its type.
// Decode turns a raw message into the matching typed struct; a Router
// dispatches typed messages to one handler per command.
package protocol
