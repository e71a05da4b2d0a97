package lint

import (
	"testing"

	"github.com/rendis/seamark/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptFixValidCodeUnchanged(t *testing.T) {
	codes := []string{
		"flowchart TD\n A-->B",
		"sequenceDiagram\n Alice->>Bob: Hi",
		"  flowchart TD\n A-->B\n", // surrounding whitespace preserved too
	}
	for _, code := range codes {
		verdict := Validate(code)
		require.True(t, verdict.Valid)
		assert.Equal(t, code, AttemptFix(code, verdict))
	}
}

func TestAttemptFixClosesBracket(t *testing.T) {
	code := "flowchart TD\n A[Start"
	verdict := Validate(code)
	require.False(t, verdict.Valid)

	fixed := AttemptFix(code, verdict)
	assert.Equal(t, "flowchart TD\n A[Start]", fixed)

	revalidated := Validate(fixed)
	assert.True(t, revalidated.Valid, "errors: %v", revalidated.Errors)
}

func TestAttemptFixSingleUnmatchedParen(t *testing.T) {
	code := "flowchart TD\n A(Start --> B"
	verdict := Validate(code)
	require.False(t, verdict.Valid)

	fixed := AttemptFix(code, verdict)
	assert.True(t, Validate(fixed).Valid)
}

func TestAttemptFixNestedBrackets(t *testing.T) {
	code := "flowchart TD\n A[foo(bar"
	verdict := Validate(code)
	require.False(t, verdict.Valid)

	fixed := AttemptFix(code, verdict)
	// Innermost closer first.
	assert.Equal(t, "flowchart TD\n A[foo(bar)]", fixed)
	assert.True(t, Validate(fixed).Valid)
}

func TestAttemptFixClosesQuote(t *testing.T) {
	code := "flowchart TD\n A[\"Start --> B"
	verdict := Validate(code)
	require.False(t, verdict.Valid)

	fixed := AttemptFix(code, verdict)
	assert.True(t, Validate(fixed).Valid, "fixed: %q", fixed)
}

func TestAttemptFixKeywordTypo(t *testing.T) {
	// A miscased keyword classifies as unknown; the unbalanced bracket makes
	// the verdict invalid so the fixer is allowed to run.
	code := "sequencediagram\n Alice->>Bob: Hi [wip"
	verdict := Validate(code)
	require.False(t, verdict.Valid)
	require.Equal(t, schema.KindUnknown, verdict.Kind)

	fixed := AttemptFix(code, verdict)
	revalidated := Validate(fixed)
	assert.Equal(t, schema.KindSequence, revalidated.Kind)
	assert.True(t, revalidated.Valid, "errors: %v", revalidated.Errors)
}

func TestAttemptFixNormalizesStateArrows(t *testing.T) {
	code := "stateDiagram-v2\n Idle -> Done [x"
	verdict := Validate(code)
	require.False(t, verdict.Valid)

	fixed := AttemptFix(code, verdict)
	assert.Contains(t, fixed, "Idle --> Done")
	assert.True(t, Validate(fixed).Valid, "fixed: %q", fixed)
}

func TestAttemptFixSinglePass(t *testing.T) {
	// Running the fixer twice must give the same output as running it once.
	code := "flowchart TD\n A[Start"
	verdict := Validate(code)

	once := AttemptFix(code, verdict)
	twice := AttemptFix(once, Validate(once))
	assert.Equal(t, once, twice)
}

func TestAttemptFixNeverDeletesContent(t *testing.T) {
	code := "flowchart TD\n A[Start --> B{decide"
	verdict := Validate(code)
	require.False(t, verdict.Valid)

	fixed := AttemptFix(code, verdict)
	// Every original line survives as a prefix of the repaired line.
	assert.Contains(t, fixed, "A[Start --> B{decide")
}
