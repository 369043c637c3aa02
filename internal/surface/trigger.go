package surface

import "fmt"

// Trigger is an input event from whoever owns the reference element.
type Trigger int

const (
	PointerEnter Trigger = iota
	PointerLeave
	FocusIn
	FocusOut
	// PlayAppear and PlayDisappear are explicit actions such as sending a message.
	PlayAppear
	PlayDisappear
)

var triggerNames = map[Trigger]string{
	PointerEnter:  "pointer-enter",
	PointerLeave:  "pointer-leave",
	FocusIn:       "focus-in",
	FocusOut:      "focus-out",
	PlayAppear:    "play-appear",
	PlayDisappear: "play-disappear",
}

func (t Trigger) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}
	return fmt.Sprintf("trigger(%d)", int(t))
}

// ParseTrigger accepts the names produced by String.
func ParseTrigger(s string) (Trigger, error) {
	for t, name := range triggerNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown trigger: %s", s)
}

func (t Trigger) isFocus() bool { return t == FocusIn || t == FocusOut }
