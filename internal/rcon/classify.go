package rcon

import "strings"

// Status classifies the outcome of one RCON command round trip.
type Status int

const (
	StatusSuccess Status = iota
	// StatusSemanticError means the server accepted the command but
	// reported a domain-level failure in its response text.
	StatusSemanticError
	// StatusTransportError means the round trip itself failed.
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSemanticError:
		return "semantic_error"
	case StatusTransportError:
		return "transport_error"
	}
	return "unknown"
}

// errorPrefixes are the known response openings a vanilla server uses for
// command failures. The protocol has no structured error channel, so this
// is the only signal available. The list is server-version-dependent and
// not exhaustive: an unrecognized failure phrasing classifies as success.
var errorPrefixes = []string{
	"Unknown or incomplete command",
	"Incorrect argument",
	"Invalid player",
	"Player not found",
	"That player is not online",
	"You do not have permission to use this command",
	"Cannot give",
	"Invalid UUID",
	"No such entity",
	"That block is not a container",
	"Could not insert items",
	"Data tag parsing failed",
	"Expected",
	"Invalid command syntax",
	"An unexpected error occurred",
	"No targets matched selector",
	"The entity UUID is invalid",
	"Invalid command format",
}

// Classify maps a raw response string to success or semantic error. It is
// a pure function; transport errors are classified by the caller at the
// point of the round trip.
func Classify(response string) Status {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return StatusSuccess
	}
	for _, prefix := range errorPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return StatusSemanticError
		}
	}
	return StatusSuccess
}
