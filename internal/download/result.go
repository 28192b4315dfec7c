package download

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// Status is the outcome tag on the first line of a status block.
type Status string

const (
	StatusAudio  Status = "OK_AUDIO"
	StatusSingle Status = "OK_SINGLE"
	StatusSplit  Status = "OK_SPLIT"
	StatusError  Status = "ERR"
)

// Result is the outcome of one run. Success statuses carry every path they
// require; StatusError carries only the failure kind and message.
type Result struct {
	Status Status
	// File is set for StatusAudio and StatusSingle.
	File string
	// Video and Audio are set for StatusSplit.
	Video      string
	Audio      string
	Title      string
	ErrKind    string
	ErrMessage string
}

// OK reports whether the run produced files.
func (r Result) OK() bool {
	return r.Status != StatusError && r.Status != ""
}

// Paths returns the files the result reports, in block order.
func (r Result) Paths() []string {
	switch r.Status {
	case StatusAudio, StatusSingle:
		return []string{r.File}
	case StatusSplit:
		return []string{r.Video, r.Audio}
	default:
		return nil
	}
}

// String renders the newline-delimited status block.
func (r Result) String() string {
	switch r.Status {
	case StatusAudio, StatusSingle:
		return fmt.Sprintf("%s\nFILE=%s\nFINAL_TITLE=%s", r.Status, r.File, r.Title)
	case StatusSplit:
		return fmt.Sprintf("%s\nVIDEO=%s\nAUDIO=%s\nFINAL_TITLE=%s", r.Status, r.Video, r.Audio, r.Title)
	default:
		return fmt.Sprintf("ERR: %s\n%s", r.ErrKind, r.ErrMessage)
	}
}

func errorResult(kind, message string) Result {
	return Result{Status: StatusError, ErrKind: kind, ErrMessage: message}
}

// ParseResult reads a status block produced by Result.String.
func ParseResult(block string) (Result, error) {
	block = strings.TrimRight(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	head, rest, _ := strings.Cut(block, "\n")
	head = strings.TrimSpace(head)

	if kind, ok := strings.CutPrefix(head, "ERR:"); ok {
		return errorResult(strings.TrimSpace(kind), rest), nil
	}

	result := Result{Status: Status(head)}
	var required []string
	switch result.Status {
	case StatusAudio, StatusSingle:
		required = []string{"FILE", "FINAL_TITLE"}
	case StatusSplit:
		required = []string{"VIDEO", "AUDIO", "FINAL_TITLE"}
	default:
		return Result{}, fmt.Errorf("unknown status %q", head)
	}

	values := make(map[string]string, len(required))
	scanner := bufio.NewScanner(strings.NewReader(rest))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read status block: %w", err)
	}
	var missing []string
	for _, key := range required {
		if _, ok := values[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Result{}, errors.New("status block missing " + strings.Join(missing, ", "))
	}

	result.File = values["FILE"]
	result.Video = values["VIDEO"]
	result.Audio = values["AUDIO"]
	result.Title = values["FINAL_TITLE"]
	return result, nil
}
