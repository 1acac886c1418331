package domain

import "regexp"

var seatLabelRgx = regexp.MustCompile(`^[A-Z][0-9]{1,2}$`)

// SeatLabel identifies a physical seat, e.g. "A1" or "B12".
type SeatLabel string

func (s SeatLabel) String() string {
	return string(s)
}

func ParseSeat(label string) (SeatLabel, error) {
	if !seatLabelRgx.MatchString(label) {
		return "", ErrInvalidSeatFormat
	}

	return SeatLabel(label), nil
}

// IsValidSeat reports whether label matches the seat grid pattern.
func IsValidSeat(label string) bool {
	_, err := ParseSeat(label)
	return err == nil
}

// DuplicateSeats returns every label that occurs more than once, in order of
// its second occurrence.
func DuplicateSeats(seats []SeatLabel) []SeatLabel {
	seen := make(map[SeatLabel]int, len(seats))
	var duplicates []SeatLabel

	for _, s := range seats {
		seen[s]++
		if seen[s] == 2 {
			duplicates = append(duplicates, s)
		}
	}

	return duplicates
}

// ConflictingSeats returns the requested seats that are present in held,
// preserving request order.
func ConflictingSeats(requested []SeatLabel, held map[SeatLabel]struct{}) []SeatLabel {
	var conflicts []SeatLabel

	for _, s := range requested {
		if _, ok := held[s]; ok {
			conflicts = append(conflicts, s)
		}
	}

	return conflicts
}
