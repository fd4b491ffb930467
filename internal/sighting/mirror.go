package sighting

import (
	"encoding/json"

	"github.com/wildwatch/sightings/internal/errors"
	"github.com/wildwatch/sightings/internal/legacy"
)

// MirrorStatus tags the outcome of the legacy mirror write.
type MirrorStatus string

const (
	MirrorOK       MirrorStatus = "ok"
	MirrorError    MirrorStatus = "error"
	MirrorDisabled MirrorStatus = "disabled"
)

// MirrorResult is the legacy mirror outcome attached to a created sighting.
// Exactly one of Record or Error is set, depending on Status.
type MirrorResult struct {
	Status MirrorStatus    `json:"status"`
	Record json.RawMessage `json:"record,omitempty"`
	Error  *MirrorFailure  `json:"error,omitempty"`
}

// MirrorFailure carries upstream diagnostics for a failed mirror write.
type MirrorFailure struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	Data       any    `json:"data,omitempty"`
}

func mirrorSucceeded(record json.RawMessage) MirrorResult {
	return MirrorResult{Status: MirrorOK, Record: record}
}

func mirrorSkipped() MirrorResult {
	return MirrorResult{Status: MirrorDisabled}
}

func mirrorFailed(err error) MirrorResult {
	failure := &MirrorFailure{Message: err.Error()}

	var mErr *legacy.MirrorError
	if errors.As(err, &mErr) {
		failure.StatusCode = mErr.StatusCode
		failure.Data = mErr.Body
	}
	return MirrorResult{Status: MirrorError, Error: failure}
}
