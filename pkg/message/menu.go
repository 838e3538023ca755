package message

import "time"

// backCode mirrors the catalog's BACK action code. The stack manages BACK
// entries itself so a message can never show two live back buttons.
const backCode = "BACK"

// EntryData is the opaque per-action data stored inside a menu entry.
type EntryData struct {
	TaskID        string        `json:"task_id,omitempty"`
	CaptionSuffix string        `json:"caption_suffix,omitempty"`
	Payload       []string      `json:"payload,omitempty"`
	Timeout       time.Duration `json:"timeout,omitempty"`
}

// Menu is one level of the action menu: action code to its entry data.
type Menu map[string]EntryData

// Codes returns the set of action codes in the menu.
func (m Menu) Codes() map[string]struct{} {
	codes := make(map[string]struct{}, len(m))
	for code := range m {
		codes[code] = struct{}{}
	}
	return codes
}

// MenuStack is the ordered stack of menu levels; the last level is the one
// currently rendered.
type MenuStack []Menu

// Current returns the visible (top) menu, or an empty menu for an empty stack.
func (s MenuStack) Current() Menu {
	if len(s) == 0 {
		return Menu{}
	}
	return s[len(s)-1]
}

// Depth returns the number of stacked levels.
func (s MenuStack) Depth() int {
	return len(s)
}

// Mutate applies one menu update and reports whether the set of visible action
// codes changed.
//
// In order: entries from add merge into the current top (creating a level if
// none exists); codes in remove are dropped from it; if replace is a non-nil
// non-empty menu it is pushed as a new level, while a non-nil empty menu pops
// the current level instead of leaving an empty frame. Afterwards the BACK
// invariant is enforced: exactly the top level carries a BACK entry, and only
// while more than one level exists.
func (s *MenuStack) Mutate(add Menu, remove []string, replace Menu) bool {
	stack := *s

	var current Menu
	if len(stack) > 0 {
		current = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	} else {
		current = Menu{}
	}
	oldCodes := current.Codes()

	for code, data := range add {
		current[code] = data
	}
	for _, code := range remove {
		delete(current, code)
	}

	if len(current) > 0 {
		stack = append(stack, current)
	}

	if replace != nil {
		if len(replace) > 0 {
			stack = append(stack, replace)
		} else if len(stack) > 0 {
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 1 {
		delete(stack[len(stack)-2], backCode)
		stack[len(stack)-1][backCode] = EntryData{}
	} else if len(stack) == 1 {
		delete(stack[0], backCode)
	}

	*s = stack
	return !sameCodes(oldCodes, s.Current().Codes())
}

// Pop removes the top level, used by explicit back navigation.
func (s *MenuStack) Pop() bool {
	return s.Mutate(nil, nil, Menu{})
}

// Clear drops every level.
func (s *MenuStack) Clear() bool {
	changed := len(s.Current()) > 0
	*s = MenuStack{}
	return changed
}

func sameCodes(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for code := range a {
		if _, ok := b[code]; !ok {
			return false
		}
	}
	return true
}
