package rcon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidInput means the command list failed pre-flight validation
// before anything was sent.
var ErrInvalidInput = errors.New("commands must be a non-empty list of non-blank strings")

// noOutput is reported for a successful command with a blank response,
// so "no response" is never confused with "not yet run".
const noOutput = "command executed, no output"

// Connection is one live command channel to a server.
type Connection interface {
	SendRconCommand(ctx context.Context, command string) (string, error)
}

// Outcome records one attempted command.
type Outcome struct {
	Command      string
	Status       Status
	ResponseText string
}

// Executor runs command batches strictly in order. Commands may have
// server-side ordering dependencies, so there is no parallel fan-out
// and no retry.
type Executor struct {
	log *zap.Logger
}

func NewExecutor(log *zap.Logger) *Executor {
	return &Executor{log: log}
}

// Execute sends each command in list order over conn and folds the
// classified outcomes into a human-readable report. Per-command failures
// are never returned as errors - they are part of the report, because the
// caller consumes free text and must never lose partial progress. With
// continueOnError false the batch stops at the first failure and the
// report leads with that failure followed by the prior success lines;
// with continueOnError true every command is attempted and failed ones
// are marked inline.
//
// The only returned error is ErrInvalidInput from pre-flight validation,
// raised before any command is sent.
func (e *Executor) Execute(ctx context.Context, channelKey string, conn Connection, commands []string, continueOnError bool) (string, error) {
	if len(commands) == 0 {
		return "", ErrInvalidInput
	}
	for _, cmd := range commands {
		if strings.TrimSpace(cmd) == "" {
			return "", ErrInvalidInput
		}
	}

	var lines []string

	for _, command := range commands {
		outcome := e.run(ctx, conn, command)

		if outcome.Status == StatusSuccess {
			lines = append(lines, fmt.Sprintf("Command '%s': %s", command, outcome.ResponseText))
			e.log.Info("rcon command succeeded",
				zap.String("channel_key", channelKey),
				zap.String("command", command),
				zap.String("response", outcome.ResponseText))
			continue
		}

		e.log.Error("rcon command failed",
			zap.String("channel_key", channelKey),
			zap.String("command", command),
			zap.String("status", outcome.Status.String()),
			zap.String("detail", outcome.ResponseText))

		if !continueOnError {
			report := fmt.Sprintf("Error executing command '%s': %s", command, outcome.ResponseText)
			if len(lines) > 0 {
				report += "\nPrevious results:\n" + strings.Join(lines, "\n")
			}
			return report, nil
		}
		lines = append(lines, fmt.Sprintf("Command '%s': Error - %s", command, outcome.ResponseText))
	}

	return strings.Join(lines, "\n"), nil
}

func (e *Executor) run(ctx context.Context, conn Connection, command string) Outcome {
	response, err := conn.SendRconCommand(ctx, command)
	if err != nil {
		return Outcome{Command: command, Status: StatusTransportError, ResponseText: err.Error()}
	}

	response = strings.TrimSpace(response)
	if status := Classify(response); status == StatusSemanticError {
		return Outcome{Command: command, Status: StatusSemanticError, ResponseText: response}
	}
	if response == "" {
		response = noOutput
	}
	return Outcome{Command: command, Status: StatusSuccess, ResponseText: response}
}
