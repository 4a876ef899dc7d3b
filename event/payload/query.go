package payload

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dhollis/lattice/event/topic"
)

// ErrAlreadyResponded is returned when a query is answered twice.
var ErrAlreadyResponded = errors.New("script query already responded")

// ScriptQuery is a call from page script into the shell. It carries a
// correlation ID and a reply channel; exactly one handler is expected to
// answer via Respond or RespondError, and the bridge that published the
// query reads the response from Response and echoes it back to the page.
type ScriptQuery struct {
	// ID correlates the response with the originating page call.
	ID string

	// Method is the operation the page requested.
	Method string

	// Params is the raw JSON argument object sent by the page.
	Params []byte

	once  sync.Once
	reply chan ScriptResponse
}

// ScriptResponse is the JSON document echoed back to the page.
type ScriptResponse struct {
	ID   string
	Body []byte
}

// NewScriptQuery creates a query with a fresh correlation ID and a
// buffered reply channel so responders never block.
func NewScriptQuery(method string, params []byte) *ScriptQuery {
	return &ScriptQuery{
		ID:     uuid.NewString(),
		Method: method,
		Params: params,
		reply:  make(chan ScriptResponse, 1),
	}
}

// EventName implements Payload.
func (*ScriptQuery) EventName() topic.Topic { return TopicScriptQuery }

// Param returns the JSON parameter at the given gjson path.
func (q *ScriptQuery) Param(path string) gjson.Result {
	return gjson.GetBytes(q.Params, path)
}

// Respond answers the query with a result value. Only the first response
// wins; later calls return ErrAlreadyResponded.
func (q *ScriptQuery) Respond(result any) error {
	return q.send("result", result)
}

// RespondError answers the query with an error message.
func (q *ScriptQuery) RespondError(message string) error {
	return q.send("error", message)
}

func (q *ScriptQuery) send(key string, value any) error {
	err := ErrAlreadyResponded
	q.once.Do(func() {
		body, berr := sjson.SetBytes([]byte(`{}`), "id", q.ID)
		if berr == nil {
			body, berr = sjson.SetBytes(body, key, value)
		}
		if berr != nil {
			err = berr
			return
		}
		q.reply <- ScriptResponse{ID: q.ID, Body: body}
		err = nil
	})
	return err
}

// Response returns the channel the answer is delivered on.
func (q *ScriptQuery) Response() <-chan ScriptResponse {
	return q.reply
}

// newScriptQueryPayload builds a ScriptQuery from raw publish arguments.
// A pre-built *ScriptQuery passed positionally is handled by the catalog's
// pass-through before this constructor runs.
func newScriptQueryPayload(args Args) (Payload, error) {
	method, ok := args.String("method", 0)
	if !ok || method == "" {
		return nil, errors.New("script query requires a method")
	}
	var params []byte
	switch v := args.Fields["params"].(type) {
	case []byte:
		params = v
	case string:
		params = []byte(v)
	case nil:
	default:
		return nil, errors.New("script query params must be JSON bytes or string")
	}
	return NewScriptQuery(method, params), nil
}
