package scoring

import (
	"fmt"
	"strings"

	"github.com/isdmx/codescore/sandbox"
)

// Correctness tiers
const (
	CorrectnessFailed      = 0
	CorrectnessMismatch    = 25
	CorrectnessNoReference = 50
	CorrectnessPartial     = 75
	CorrectnessExact       = 100
)

// Report is the scored outcome of one submission. SubScores is nil when
// the program did not run successfully.
type Report struct {
	Success bool   `json:"success"`
	Score   int    `json:"score"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
	*SubScores
}

// SubScores holds the four heuristic ratings, each in [0, 100].
type SubScores struct {
	CodeQuality    int `json:"code_quality"`
	MLKnowledge    int `json:"ml_knowledge"`
	ProblemSolving int `json:"problem_solving"`
	Engineering    int `json:"engineering"`
}

// Score turns an execution result into a Report. It is pure: the same
// inputs always give the same Report.
func Score(source, expected string, result sandbox.ExecutionResult) Report {
	if !result.Succeeded() {
		return Report{
			Success: false,
			Score:   CorrectnessFailed,
			Error:   failureMessage(result),
		}
	}

	return Report{
		Success: true,
		Score:   Correctness(result.Stdout, expected),
		Output:  result.Stdout,
		SubScores: &SubScores{
			CodeQuality:    CodeQuality(source),
			MLKnowledge:    MLKnowledge(source),
			ProblemSolving: ProblemSolving(source),
			Engineering:    Engineering(source),
		},
	}
}

func failureMessage(result sandbox.ExecutionResult) string {
	if msg := result.ErrorMessage(); msg != "" {
		return msg
	}
	if result.Status == sandbox.StatusNonZeroExit {
		return fmt.Sprintf("process exited with status %d", result.ExitCode)
	}
	return string(result.Status)
}

// Correctness compares captured stdout with the expected output.
//
// An empty expectation scores 50. Containment of the whole trimmed
// expectation scores 100, containment of any single trimmed line of it 75,
// anything else 25. A blank expected line is contained in every output.
func Correctness(stdout, expected string) int {
	if expected == "" {
		return CorrectnessNoReference
	}

	output := strings.TrimSpace(stdout)
	if strings.Contains(output, strings.TrimSpace(expected)) {
		return CorrectnessExact
	}

	for _, line := range strings.Split(expected, "\n") {
		if strings.Contains(output, strings.TrimSpace(line)) {
			return CorrectnessPartial
		}
	}

	return CorrectnessMismatch
}
