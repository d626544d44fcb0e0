package pipeline

import "fmt"

// ErrorKind tags a query failure for user messaging and metrics.
type ErrorKind string

const (
	KindSQLSyntax ErrorKind = "sql-syntax"
	KindExecution ErrorKind = "execution"
	// KindNoResults is kept for wire compatibility with older clients. An
	// empty result set is not treated as an error anywhere in the pipeline,
	// so nothing produces it today.
	KindNoResults ErrorKind = "no-results"
	KindTimeout   ErrorKind = "timeout"
	KindUnknown   ErrorKind = "unknown"
)

// QueryError is a failed query execution. Raw carries the engine or validator
// message for logs; UserMessage is the static, end-user safe wording.
type QueryError struct {
	Kind ErrorKind
	Raw  string
	SQL  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Raw)
}

// UserMessage never leaks engine internals to the caller.
func (e *QueryError) UserMessage() string {
	if msg, ok := userMessages[e.Kind]; ok {
		return msg
	}
	return userMessages[KindUnknown]
}

// Suggestions is non-empty for every kind.
func (e *QueryError) Suggestions() []string {
	if s, ok := kindSuggestions[e.Kind]; ok {
		return s
	}
	return kindSuggestions[KindUnknown]
}

var userMessages = map[ErrorKind]string{
	KindSQLSyntax: "The generated query was not valid SQL.",
	KindExecution: "The query could not be executed against the dataset.",
	KindNoResults: "The query ran successfully but returned no data.",
	KindTimeout:   "The query took too long and was cancelled.",
	KindUnknown:   "Something went wrong while answering your question.",
}

var kindSuggestions = map[ErrorKind][]string{
	KindSQLSyntax: {
		"Try rephrasing the question in simpler terms",
		"Mention the table or field you are interested in by name",
	},
	KindExecution: {
		"Check that the fields you mentioned exist in the dataset",
		"Try a narrower question, for example a single distribution center",
	},
	KindNoResults: {
		"Widen the date range or remove a filter",
		"Check spelling of customer, item, or status values",
	},
	KindTimeout: {
		"Ask for a smaller slice of the data",
		"Add a date range to reduce the rows scanned",
	},
	KindUnknown: {
		"Try asking the question again",
		"Rephrase the question with more specific terms",
	},
}
