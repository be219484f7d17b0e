// Package scoring rates an executed submission.
//
// Score gates on the execution outcome, then derives a correctness score
// from the captured output and four independent heuristic sub-scores from
// the source text. The heuristics are transparent keyword tables
// (see Heuristic and the Vocabulary lists), not a model of the program:
// every check is a case-insensitive substring test, so comments and string
// literals count as much as code.
package scoring
