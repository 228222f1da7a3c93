package session

// State is the position of a session in the revision workflow
type State string

const (
	StateIdle        State = "idle"
	StateParsingFile State = "parsing_file"
	StateFileReady   State = "file_ready"
	StateAnalyzing   State = "analyzing"
	StateResultReady State = "result_ready"
	StateError       State = "error"
)

// Event is a user action or the completion of an operation
type Event string

const (
	EventSelectFile         Event = "select_file"
	EventParsed             Event = "parsed"
	EventParseFailed        Event = "parse_failed"
	EventRemoveFile         Event = "remove_file"
	EventEditJobDescription Event = "edit_job_description"
	EventSubmit             Event = "submit"
	EventAnalyzed           Event = "analyzed"
	EventAnalysisFailed     Event = "analysis_failed"
	EventReset              Event = "reset"
)

// transitions is the complete state machine. Pairs not listed are refused.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventSelectFile:         StateParsingFile,
		EventRemoveFile:         StateIdle,
		EventEditJobDescription: StateIdle,
		EventReset:              StateIdle,
	},
	StateParsingFile: {
		EventParsed:             StateFileReady,
		EventParseFailed:        StateError,
		EventEditJobDescription: StateParsingFile,
		EventReset:              StateIdle,
	},
	StateFileReady: {
		EventSelectFile:         StateParsingFile,
		EventRemoveFile:         StateIdle,
		EventEditJobDescription: StateFileReady,
		EventSubmit:             StateAnalyzing,
		EventReset:              StateIdle,
	},
	StateAnalyzing: {
		EventAnalyzed:       StateResultReady,
		EventAnalysisFailed: StateError,
		EventReset:          StateIdle,
	},
	StateResultReady: {
		EventSelectFile:         StateParsingFile,
		EventRemoveFile:         StateIdle,
		EventEditJobDescription: StateFileReady,
		EventSubmit:             StateAnalyzing,
		EventReset:              StateIdle,
	},
	StateError: {
		EventSelectFile:         StateParsingFile,
		EventRemoveFile:         StateIdle,
		EventEditJobDescription: StateError,
		EventSubmit:             StateAnalyzing,
		EventReset:              StateIdle,
	},
}

// next returns the state reached from `from` on ev
func next(from State, ev Event) (State, bool) {
	to, ok := transitions[from][ev]
	return to, ok
}

// busy reports whether an operation is in flight
func (s State) busy() bool {
	return s == StateParsingFile || s == StateAnalyzing
}
