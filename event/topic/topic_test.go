package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopic_Segments(t *testing.T) {
	assert.Equal(t, []string{"calc", "requested"}, Topic("calc.requested").Segments())
	assert.Equal(t, []string{"alert"}, Topic("alert").Segments())
	assert.Nil(t, Topic("").Segments())
}

func TestTopic_Base(t *testing.T) {
	assert.Equal(t, "data_sent", Topic("serial.data_sent").Base())
	assert.Equal(t, "alert", Topic("alert").Base())
}

func TestTopic_IsPattern(t *testing.T) {
	assert.True(t, Topic("calc.*").IsPattern())
	assert.True(t, Topic("*").IsPattern())
	assert.True(t, Topic("serial.?").IsPattern())
	assert.False(t, Topic("calc.requested").IsPattern())
}

func TestTopic_IsValid(t *testing.T) {
	tests := []struct {
		topic Topic
		valid bool
	}{
		{"calc.requested", true},
		{"alert", true},
		{"calc.*", true},
		{"", false},
		{".calc", false},
		{"calc.", false},
		{"calc..requested", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.topic.IsValid(), "topic %q", tt.topic)
	}
}

func TestTopic_Qualified(t *testing.T) {
	assert.Equal(t, Topic("calc.requested"), Topic("requested").Qualified("calc"))
	assert.Equal(t, Topic("calc.requested"), Topic("calc.requested").Qualified("calc"))
	assert.Equal(t, Topic("requested"), Topic("requested").Qualified(""))
	assert.Equal(t, Topic("app.calc.requested"), Topic("calc.requested").Qualified("app"))
}

func TestTopic_InNamespace(t *testing.T) {
	assert.True(t, Topic("calc.requested").InNamespace("calc"))
	assert.True(t, Topic("calc.requested").InNamespace(""))
	assert.False(t, Topic("calculator.on").InNamespace("calc"))
	assert.False(t, Topic("calc").InNamespace("calc"))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*", "anything.at.all", true},
		{"calc.requested", "calc.requested", true},
		{"calc.requested", "calc.completed", false},
		{"calc.*", "calc.requested", true},
		{"calc.*", "calc.completed", true},
		{"calc.*", "titlebar.close", false},
		// * crosses segment boundaries
		{"calc.*", "calc.history.cleared", true},
		{"*.closed", "serial.closed", true},
		{"*.closed", "serial.opened", false},
		{"serial.?pened", "serial.opened", true},
		{"serial.?pened", "serial.reopened", false},
		// malformed glob falls back to the regex translation
		{"calc.[*", "calc.[anything", true},
		{"calc.[*", "titlebar.close", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.pattern, tt.name), "pattern %q name %q", tt.pattern, tt.name)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, Topic("calc.requested"), Join("calc", "requested"))
}
