package payload

import (
	"errors"
	"time"

	"github.com/dhollis/lattice/event/topic"
)

// Built-in event names with registered payload kinds.
const (
	// TopicNavigation is published when the embedded page navigates.
	TopicNavigation topic.Topic = "browser.navigation"

	// TopicAlert is published when the page raises an alert dialog.
	TopicAlert topic.Topic = "browser.alert"

	// TopicScriptQuery is published when page script calls into the shell.
	TopicScriptQuery topic.Topic = "browser.query"

	// TopicFadeOut is published to start the window fade-out animation.
	TopicFadeOut topic.Topic = "window.fadeout"

	// TopicButtonClick is published when a shell UI button is clicked.
	TopicButtonClick topic.Topic = "ui.button.click"

	// TopicCalcResult is published when a calculation completes.
	TopicCalcResult topic.Topic = "calc.completed"

	// TopicSystemCommand is published to run a shell-level command.
	TopicSystemCommand topic.Topic = "system.command"
)

// Navigation is published when the embedded page navigates.
type Navigation struct {
	// URL is the navigation target.
	URL string

	// NewWindow is true when the navigation requests a new window.
	NewWindow bool
}

// EventName implements Payload.
func (Navigation) EventName() topic.Topic { return TopicNavigation }

// Alert is published when the page raises an alert dialog.
type Alert struct {
	Title   string
	Message string
}

// EventName implements Payload.
func (Alert) EventName() topic.Topic { return TopicAlert }

// FadeOut starts the window fade-out animation.
type FadeOut struct {
	// Duration is the total animation time.
	Duration time.Duration

	// Steps is the number of opacity steps.
	Steps int
}

// EventName implements Payload.
func (FadeOut) EventName() topic.Topic { return TopicFadeOut }

// DefaultFadeOut returns the fade-out used when no arguments are given.
func DefaultFadeOut() FadeOut {
	return FadeOut{Duration: 300 * time.Millisecond, Steps: 10}
}

// ButtonClick is published when a shell UI button is clicked.
type ButtonClick struct {
	ButtonID string
}

// EventName implements Payload.
func (ButtonClick) EventName() topic.Topic { return TopicButtonClick }

// CalcResult carries the outcome of a calculation.
type CalcResult struct {
	Expression string
	Result     string
}

// EventName implements Payload.
func (CalcResult) EventName() topic.Topic { return TopicCalcResult }

// SystemCommand asks the shell to run a named command.
type SystemCommand struct {
	Command string
	Args    []string
}

// EventName implements Payload.
func (SystemCommand) EventName() topic.Topic { return TopicSystemCommand }

func registerBuiltins(c *Catalog) {
	c.Register(TopicNavigation, newNavigation)
	c.Register(TopicAlert, newAlert)
	c.Register(TopicScriptQuery, newScriptQueryPayload)
	c.Register(TopicFadeOut, newFadeOut)
	c.Register(TopicButtonClick, newButtonClick)
	c.Register(TopicCalcResult, newCalcResult)
	c.Register(TopicSystemCommand, newSystemCommand)
}

func newNavigation(args Args) (Payload, error) {
	url, ok := args.String("url", 0)
	if !ok || url == "" {
		return nil, errors.New("navigation requires a url")
	}
	return Navigation{URL: url, NewWindow: args.Bool("new_window")}, nil
}

func newAlert(args Args) (Payload, error) {
	msg, ok := args.String("message", 0)
	if !ok {
		return nil, errors.New("alert requires a message")
	}
	title, _ := args.String("title", 1)
	return Alert{Title: title, Message: msg}, nil
}

func newFadeOut(args Args) (Payload, error) {
	f := DefaultFadeOut()
	if v, ok := args.Fields["duration"].(time.Duration); ok {
		f.Duration = v
	}
	if v, ok := args.Fields["steps"].(int); ok && v > 0 {
		f.Steps = v
	}
	return f, nil
}

func newButtonClick(args Args) (Payload, error) {
	id, ok := args.String("button_id", 0)
	if !ok || id == "" {
		return nil, errors.New("button click requires a button_id")
	}
	return ButtonClick{ButtonID: id}, nil
}

func newCalcResult(args Args) (Payload, error) {
	expr, ok := args.String("expression", 0)
	if !ok {
		return nil, errors.New("calc result requires an expression")
	}
	result, ok := args.String("result", 1)
	if !ok {
		return nil, errors.New("calc result requires a result")
	}
	return CalcResult{Expression: expr, Result: result}, nil
}

func newSystemCommand(args Args) (Payload, error) {
	cmd, ok := args.String("command", 0)
	if !ok || cmd == "" {
		return nil, errors.New("system command requires a command")
	}
	var rest []string
	if v, ok := args.Fields["args"].([]string); ok {
		rest = v
	}
	return SystemCommand{Command: cmd, Args: rest}, nil
}
