package cmd

import "fmt"

const (
	ExitOK        = 0
	ExitViolation = 1
	ExitArg       = 2
	ExitInput     = 3
	ExitConfig    = 4
	ExitInternal  = 5
)

// ExitError 携带退出码；Reason 非空时在机器可读格式下输出为 error 事件的 code。
type ExitError struct {
	Code   int
	Msg    string
	Reason string
}

func (e *ExitError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Msg
}

func (e *ExitError) category() string {
	switch e.Code {
	case ExitArg:
		return "arg"
	case ExitConfig:
		return "config"
	case ExitInput:
		return "input"
	default:
		return "runtime"
	}
}
