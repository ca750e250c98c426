package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arcadia-lab/sentinel-trading/pkg/errors"
)

// CallbackVerb is the human action carried by an inbound callback.
type CallbackVerb string

const (
	CallbackVerbExecute CallbackVerb = "execute"
	CallbackVerbDiscard CallbackVerb = "discard"
)

// CallbackEvent is one inbound human-approval action tied to a signal id.
// It is ephemeral: consumed once per delivery, never persisted.
type CallbackEvent struct {
	Verb     CallbackVerb
	SignalID int64
	QueryID  string
}

// CallbackData renders the wire token for a verb and signal id, e.g. "execute_42".
func CallbackData(verb CallbackVerb, signalID int64) string {
	return fmt.Sprintf("%s_%d", verb, signalID)
}

// ParseCallbackData parses an action token of the form "<verb>_<signalId>".
func ParseCallbackData(data string) (CallbackVerb, int64, error) {
	idx := strings.LastIndex(data, "_")
	if idx <= 0 || idx == len(data)-1 {
		return "", 0, errors.Newf(errors.ErrCodeInvalidCallback, "malformed callback data %q", data)
	}

	verb := CallbackVerb(data[:idx])
	if verb != CallbackVerbExecute && verb != CallbackVerbDiscard {
		return "", 0, errors.Newf(errors.ErrCodeInvalidCallback, "unknown callback verb %q", data[:idx])
	}

	id, err := strconv.ParseInt(data[idx+1:], 10, 64)
	if err != nil {
		return "", 0, errors.Wrapf(errors.ErrCodeInvalidCallback, err, "bad signal id in callback data %q", data)
	}

	return verb, id, nil
}
