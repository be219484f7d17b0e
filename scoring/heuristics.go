package scoring

import "strings"

// MaxSubScore caps every heuristic sub-score
const MaxSubScore = 100

// PresenceRule awards Points once when any of Terms occurs.
type PresenceRule struct {
	Name   string
	Points int
	Terms  Vocabulary
}

// CountRule awards PointsEach per distinct matching term, up to MaxPoints.
type CountRule struct {
	Name       string
	PointsEach int
	MaxPoints  int
	Terms      Vocabulary
}

// LengthRule awards Points when the source has more than MinLines lines.
type LengthRule struct {
	Points   int
	MinLines int
}

// Heuristic is a point-accumulation table over source text.
type Heuristic struct {
	Name     string
	Presence []PresenceRule
	Counted  []CountRule
	Length   *LengthRule
}

// Score evaluates the table against source. Matching is case-insensitive
// and ignores syntax entirely: comments and string literals count too.
func (h Heuristic) Score(source string) int {
	lowered := strings.ToLower(source)
	score := 0

	for _, rule := range h.Presence {
		if rule.Terms.Any(lowered) {
			score += rule.Points
		}
	}

	for _, rule := range h.Counted {
		score += min(rule.Terms.Count(lowered)*rule.PointsEach, rule.MaxPoints)
	}

	if h.Length != nil && lineCount(source) > h.Length.MinLines {
		score += h.Length.Points
	}

	return min(score, MaxSubScore)
}

// lineCount counts newline-separated segments, including a trailing empty one.
func lineCount(source string) int {
	return strings.Count(source, "\n") + 1
}

// The four heuristic tables.
var (
	CodeQualityHeuristic = Heuristic{
		Name: "code_quality",
		Presence: []PresenceRule{
			{Name: "imports", Points: 20, Terms: ImportMarkers},
			{Name: "definitions", Points: 20, Terms: DefinitionMarkers},
			{Name: "comments", Points: 15, Terms: CommentMarkers},
			{Name: "error_handling", Points: 15, Terms: ErrorHandlingMarkers},
			{Name: "identifiers", Points: 15, Terms: QualityIdentifiers},
		},
		Length: &LengthRule{Points: 15, MinLines: 5},
	}

	MLKnowledgeHeuristic = Heuristic{
		Name: "ml_knowledge",
		Counted: []CountRule{
			{Name: "libraries", PointsEach: 20, MaxPoints: 60, Terms: MLLibraries},
			{Name: "workflow", PointsEach: 5, MaxPoints: 40, Terms: MLWorkflowKeywords},
		},
	}

	ProblemSolvingHeuristic = Heuristic{
		Name: "problem_solving",
		Presence: []PresenceRule{
			{Name: "preprocessing", Points: 25, Terms: PreprocessingKeywords},
			{Name: "modeling", Points: 25, Terms: ModelingKeywords},
			{Name: "evaluation", Points: 25, Terms: EvaluationKeywords},
			{Name: "optimization", Points: 25, Terms: OptimizationKeywords},
		},
	}

	EngineeringHeuristic = Heuristic{
		Name: "engineering",
		Presence: []PresenceRule{
			{Name: "functions", Points: 30, Terms: FunctionMarkers},
			{Name: "configuration", Points: 20, Terms: ConfigurationKeywords},
			{Name: "logging", Points: 15, Terms: LoggingKeywords},
			{Name: "documentation", Points: 20, Terms: DocstringMarkers},
			{Name: "error_handling", Points: 15, Terms: ErrorHandlingMarkers},
		},
	}
)

// CodeQuality rates imports, definitions, comments, error handling,
// naming and length.
func CodeQuality(source string) int {
	return CodeQualityHeuristic.Score(source)
}

// MLKnowledge rates the ML libraries and workflow terms referenced.
func MLKnowledge(source string) int {
	return MLKnowledgeHeuristic.Score(source)
}

// ProblemSolving rates coverage of preprocessing, modeling, evaluation
// and optimization.
func ProblemSolving(source string) int {
	return ProblemSolvingHeuristic.Score(source)
}

// Engineering rates modularity, configuration, logging, documentation and
// error handling.
func Engineering(source string) int {
	return EngineeringHeuristic.Score(source)
}
