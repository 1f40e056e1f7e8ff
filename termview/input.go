package termview

import "github.com/gdamore/tcell/v2"

// Command is a user request decoded from a terminal event.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdPause
	CmdStep
	CmdLifecycle
	CmdReset
	CmdFaster
	CmdSlower
	CmdResize
)

// Translate decodes a tcell event.
func Translate(ev tcell.Event) Command {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return CmdResize
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return CmdQuit
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return CmdQuit
			case ' ':
				return CmdPause
			case '.':
				return CmdStep
			case 'l':
				return CmdLifecycle
			case 'r':
				return CmdReset
			case '+', '=':
				return CmdFaster
			case '-':
				return CmdSlower
			}
		}
	}
	return CmdNone
}
