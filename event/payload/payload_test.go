package payload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhollis/lattice/event/topic"
)

func TestCatalog_BuildBuiltins(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		name topic.Topic
		args Args
		want Payload
	}{
		{
			name: TopicNavigation,
			args: Args{Fields: Fields{"url": "https://example.com", "new_window": true}},
			want: Navigation{URL: "https://example.com", NewWindow: true},
		},
		{
			name: TopicAlert,
			args: Args{Values: []any{"disk full", "Warning"}},
			want: Alert{Title: "Warning", Message: "disk full"},
		},
		{
			name: TopicCalcResult,
			args: Args{Fields: Fields{"expression": "1+1", "result": "2"}},
			want: CalcResult{Expression: "1+1", Result: "2"},
		},
		{
			name: TopicButtonClick,
			args: Args{Values: []any{"btn-close"}},
			want: ButtonClick{ButtonID: "btn-close"},
		},
		{
			name: TopicSystemCommand,
			args: Args{Fields: Fields{"command": "reload", "args": []string{"--hard"}}},
			want: SystemCommand{Command: "reload", Args: []string{"--hard"}},
		},
	}
	for _, tt := range tests {
		got, err := c.Build(tt.name, tt.args)
		require.NoError(t, err, "build %s", tt.name)
		assert.Equal(t, tt.want, got, "build %s", tt.name)
	}
}

func TestCatalog_BuildFadeOutDefaults(t *testing.T) {
	c := NewCatalog()

	got, err := c.Build(TopicFadeOut, Args{})
	require.NoError(t, err)
	assert.Equal(t, DefaultFadeOut(), got)

	got, err = c.Build(TopicFadeOut, Args{Fields: Fields{"duration": time.Second, "steps": 20}})
	require.NoError(t, err)
	assert.Equal(t, FadeOut{Duration: time.Second, Steps: 20}, got)
}

func TestCatalog_BuildUnknownName(t *testing.T) {
	c := NewCatalog()

	got, err := c.Build("serial.opened", Args{Fields: Fields{"port": "COM3"}})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCatalog_BuildFailure(t *testing.T) {
	c := NewCatalog()

	_, err := c.Build(TopicCalcResult, Args{Fields: Fields{"expression": "1+1"}})
	assert.Error(t, err)
}

func TestCatalog_PassThrough(t *testing.T) {
	c := NewCatalog()

	want := CalcResult{Expression: "2*3", Result: "6"}
	got, err := c.Build(TopicCalcResult, Args{Values: []any{want}})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCatalog_Register(t *testing.T) {
	c := NewCatalog()

	c.Register("serial.opened", func(args Args) (Payload, error) {
		port, _ := args.String("port", 0)
		return opened{Port: port}, nil
	})

	got, err := c.Build("serial.opened", Args{Fields: Fields{"port": "COM3"}})
	require.NoError(t, err)
	assert.Equal(t, opened{Port: "COM3"}, got)
}

type opened struct{ Port string }

func (opened) EventName() topic.Topic { return "serial.opened" }

func TestScriptQuery_ParamAndRespond(t *testing.T) {
	q := NewScriptQuery("serial.open", []byte(`{"port":"COM3","baud":9600}`))
	require.NotEmpty(t, q.ID)

	assert.Equal(t, "COM3", q.Param("port").String())
	assert.Equal(t, int64(9600), q.Param("baud").Int())

	require.NoError(t, q.Respond(map[string]any{"ok": true}))

	resp := <-q.Response()
	assert.Equal(t, q.ID, resp.ID)
	assert.Contains(t, string(resp.Body), q.ID)
	assert.Contains(t, string(resp.Body), `"ok":true`)
}

func TestScriptQuery_RespondOnce(t *testing.T) {
	q := NewScriptQuery("ping", nil)

	require.NoError(t, q.Respond("pong"))
	assert.ErrorIs(t, q.Respond("again"), ErrAlreadyResponded)
	assert.ErrorIs(t, q.RespondError("late"), ErrAlreadyResponded)

	resp := <-q.Response()
	assert.Contains(t, string(resp.Body), "pong")
}

func TestScriptQuery_ConstructorFromArgs(t *testing.T) {
	c := NewCatalog()

	got, err := c.Build(TopicScriptQuery, Args{Fields: Fields{"method": "calc.eval", "params": `{"expression":"1+1"}`}})
	require.NoError(t, err)

	q, ok := got.(*ScriptQuery)
	require.True(t, ok)
	assert.Equal(t, "calc.eval", q.Method)
	assert.Equal(t, "1+1", q.Param("expression").String())
}
