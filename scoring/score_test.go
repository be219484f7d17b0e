package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdmx/codescore/sandbox"
)

func success(stdout string) sandbox.ExecutionResult {
	return sandbox.ExecutionResult{Status: sandbox.StatusSuccess, Stdout: stdout}
}

func TestCorrectness(t *testing.T) {
	tests := []struct {
		name     string
		stdout   string
		expected string
		want     int
	}{
		{"NoReference", "anything", "", CorrectnessNoReference},
		{"NoReferenceNoOutput", "", "", CorrectnessNoReference},
		{"ExactAfterTrim", "hello\n", "hello", CorrectnessExact},
		{"ContainedWithExtraOutput", "loading...\nhello\ndone\n", "hello", CorrectnessExact},
		{"MultiLineContained", "hello\nworld\n", "hello\nworld\n", CorrectnessExact},
		{"WhitespaceOnlyReference", "x", "  \n", CorrectnessExact},
		{"OneLineMatches", "hello\n", "hello\nworld", CorrectnessPartial},
		{"TrimmedLineMatches", "world", "  world  \nzzz", CorrectnessPartial},
		{"BlankExpectedLineMatchesAnything", "x", "a\n\nb", CorrectnessPartial},
		{"NoMatch", "goodbye\n", "hello\nworld", CorrectnessMismatch},
		{"EmptyOutput", "", "hello", CorrectnessMismatch},
		{"CaseSensitive", "HELLO", "hello", CorrectnessMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Correctness(tt.stdout, tt.expected))
		})
	}
}

func TestScoreScenarios(t *testing.T) {
	t.Run("HelloMatches", func(t *testing.T) {
		report := Score(`print("hello")`, "hello", success("hello\n"))
		assert.True(t, report.Success)
		assert.Equal(t, 100, report.Score)
		assert.Equal(t, "hello\n", report.Output)
		require.NotNil(t, report.SubScores)
	})

	t.Run("GoodbyeDiverges", func(t *testing.T) {
		report := Score(`print("goodbye")`, "hello\nworld", success("goodbye\n"))
		assert.True(t, report.Success)
		assert.Equal(t, 25, report.Score)
	})

	t.Run("ExceptionIsGated", func(t *testing.T) {
		stderr := "Traceback (most recent call last):\nException: boom\n"
		report := Score(`raise Exception("boom")`, "", sandbox.ExecutionResult{
			Status:   sandbox.StatusNonZeroExit,
			Stdout:   "partial\n",
			Stderr:   stderr,
			ExitCode: 1,
		})
		assert.False(t, report.Success)
		assert.Equal(t, 0, report.Score)
		assert.Equal(t, stderr, report.Error)
		assert.Empty(t, report.Output)
		assert.Nil(t, report.SubScores)
	})

	t.Run("TimeoutIsGated", func(t *testing.T) {
		report := Score("while True: pass", "", sandbox.ExecutionResult{
			Status: sandbox.StatusTimedOut,
			Error:  sandbox.TimeoutMessage,
		})
		assert.False(t, report.Success)
		assert.Equal(t, 0, report.Score)
		assert.Equal(t, "Code execution timed out", report.Error)
		assert.Nil(t, report.SubScores)
	})

	t.Run("LaunchFailureIsGated", func(t *testing.T) {
		report := Score("print(1)", "1", sandbox.ExecutionResult{
			Status: sandbox.StatusLaunchFailure,
			Error:  "failed to create workdir: disk full",
		})
		assert.False(t, report.Success)
		assert.Equal(t, "failed to create workdir: disk full", report.Error)
		assert.Nil(t, report.SubScores)
	})

	t.Run("SilentNonZeroExit", func(t *testing.T) {
		report := Score("import sys; sys.exit(2)", "", sandbox.ExecutionResult{
			Status:   sandbox.StatusNonZeroExit,
			ExitCode: 2,
		})
		assert.Equal(t, "process exited with status 2", report.Error)
	})

	t.Run("NoReferenceIgnoresOutput", func(t *testing.T) {
		for _, stdout := range []string{"", "hello", "a\nb\nc"} {
			report := Score("print(1)", "", success(stdout))
			assert.Equal(t, 50, report.Score, stdout)
		}
	})
}

func TestScoreIsIdempotent(t *testing.T) {
	source := "import pandas as pd\ndef load():\n    \"\"\"Load data.\"\"\"\n    return pd.DataFrame()\nprint(load())\n"
	result := success("Empty DataFrame\n")

	first := Score(source, "Empty", result)
	for range 10 {
		assert.Equal(t, first, Score(source, "Empty", result))
	}
}

func TestReportWireShape(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		report := Score("def f():\n    print('model')\nf()", "model", success("model\n"))

		data, err := json.Marshal(report)
		require.NoError(t, err)

		var fields map[string]any
		require.NoError(t, json.Unmarshal(data, &fields))
		assert.Equal(t, true, fields["success"])
		assert.EqualValues(t, 100, fields["score"])
		assert.Equal(t, "model\n", fields["output"])
		assert.Contains(t, fields, "code_quality")
		assert.Contains(t, fields, "ml_knowledge")
		assert.Contains(t, fields, "problem_solving")
		assert.Contains(t, fields, "engineering")
		assert.NotContains(t, fields, "error")
	})

	t.Run("GatedFailureOmitsSubScores", func(t *testing.T) {
		report := Score("x", "", sandbox.ExecutionResult{Status: sandbox.StatusTimedOut, Error: sandbox.TimeoutMessage})

		data, err := json.Marshal(report)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":false,"score":0,"error":"Code execution timed out"}`, string(data))
	})

	t.Run("ZeroSubScoresAreKept", func(t *testing.T) {
		report := Score("x=1", "", success(""))
		require.NotNil(t, report.SubScores)

		data, err := json.Marshal(report)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"ml_knowledge":0`)
	})
}
