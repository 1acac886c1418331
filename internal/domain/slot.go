package domain

import "strings"

type Slot string

const (
	SlotMorning Slot = "morning"
	SlotNoon    Slot = "noon"
	SlotEvening Slot = "evening"
	SlotNight   Slot = "night"
)

var slots = []Slot{SlotMorning, SlotNoon, SlotEvening, SlotNight}

// ParseSlot accepts any letter case and returns the canonical lower-case slot.
func ParseSlot(label string) (Slot, error) {
	candidate := Slot(strings.ToLower(strings.TrimSpace(label)))

	for _, s := range slots {
		if s == candidate {
			return s, nil
		}
	}

	return "", ErrInvalidSlot
}

func (s Slot) String() string {
	return string(s)
}
