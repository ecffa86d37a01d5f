package library

// ReturnCode is the outcome of a store operation. Expected conditions
// (duplicate keys, exhausted copies, bad dates) are codes, not errors:
// every one of them is recoverable by the caller with corrected input.
type ReturnCode int

const (
	Ok ReturnCode = iota
	BookAlreadyExists
	ReaderAlreadyExists
	NoSuchBook
	NoAvailableExemplars
	InvalidPickPeriod
	PickPeriodTooShort
	PickPeriodTooLong
	NoReader
	ReaderAlreadyHoldsBook
)

var codeNames = map[ReturnCode]string{
	Ok:                     "OK",
	BookAlreadyExists:      "BOOK_ALREADY_EXISTS",
	ReaderAlreadyExists:    "READER_ALREADY_EXISTS",
	NoSuchBook:             "NO_SUCH_BOOK",
	NoAvailableExemplars:   "NO_AVAILABLE_EXEMPLARS",
	InvalidPickPeriod:      "INVALID_PICK_PERIOD",
	PickPeriodTooShort:     "PICK_PERIOD_TOO_SHORT",
	PickPeriodTooLong:      "PICK_PERIOD_TOO_LONG",
	NoReader:               "NO_READER",
	ReaderAlreadyHoldsBook: "READER_ALREADY_HOLDS_BOOK",
}

func (c ReturnCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
