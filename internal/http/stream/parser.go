package stream

type state uint8

const (
	stateNeutral state = iota
	stateSawCR
	stateSawCRLF
	stateSawCRLFCR
	stateDone
)

func (s state) String() string {
	switch s {
	case stateNeutral:
		return "Neutral"
	case stateSawCR:
		return "SawCR"
	case stateSawCRLF:
		return "SawCRLF"
	case stateSawCRLFCR:
		return "SawCRLFCR"
	case stateDone:
		return "Done"
	default:
		return "Invalid"
	}
}

// next advances the terminator detector by one byte. A byte that does not
// continue the current run always drops back to Neutral, even a '\r'.
func (s state) next(b byte) state {
	switch {
	case s == stateNeutral && b == '\r':
		return stateSawCR
	case s == stateSawCR && b == '\n':
		return stateSawCRLF
	case s == stateSawCRLF && b == '\r':
		return stateSawCRLFCR
	case s == stateSawCRLFCR && b == '\n':
		return stateDone
	default:
		return stateNeutral
	}
}
