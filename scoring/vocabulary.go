package scoring

import "strings"

// Vocabulary is a fixed list of lowercase terms matched by substring
// presence against lowercased source text.
type Vocabulary []string

// Any reports whether at least one term occurs in lowered.
func (v Vocabulary) Any(lowered string) bool {
	for _, term := range v {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

// Count returns how many distinct terms occur in lowered.
func (v Vocabulary) Count(lowered string) int {
	n := 0
	for _, term := range v {
		if strings.Contains(lowered, term) {
			n++
		}
	}
	return n
}

// Domain vocabularies. Scores are only comparable across deployments while
// these lists stay exactly as they are.
var (
	MLLibraries           = Vocabulary{"sklearn", "pandas", "numpy", "tensorflow", "torch", "xgboost"}
	MLWorkflowKeywords    = Vocabulary{"train", "test", "fit", "predict", "score", "accuracy", "precision", "recall", "f1"}
	PreprocessingKeywords = Vocabulary{"clean", "preprocess", "transform", "scale", "normalize"}
	ModelingKeywords      = Vocabulary{"model", "algorithm", "classifier", "regressor"}
	EvaluationKeywords    = Vocabulary{"evaluate", "score", "metric", "cross_val"}
	OptimizationKeywords  = Vocabulary{"optimize", "tune", "grid", "random"}
	QualityIdentifiers    = Vocabulary{"data", "model", "result", "score", "accuracy"}
	ConfigurationKeywords = Vocabulary{"config", "parameter", "setting"}
	LoggingKeywords       = Vocabulary{"print", "log", "monitor"}
)

// Structural markers
var (
	ImportMarkers        = Vocabulary{"import", "from"}
	DefinitionMarkers    = Vocabulary{"def ", "class "}
	FunctionMarkers      = Vocabulary{"def "}
	CommentMarkers       = Vocabulary{"#", `"""`, "'''"}
	DocstringMarkers     = Vocabulary{`"""`, "'''"}
	ErrorHandlingMarkers = Vocabulary{"try:", "except"}
)
