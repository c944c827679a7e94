package direct

import (
	"context"
	"math"
	"path"
	"regexp"

	"github.com/cyraxred/labelshark/internal/classifier"
	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/plumbing/hunks"
	"github.com/cyraxred/labelshark/internal/store"
	"github.com/pkg/errors"
)

var (
	pythonTestImport = regexp.MustCompile(`unittest`)
	testFile         = regexp.MustCompile(`^(?:.*(?:Test|test)|(?:Test|test).*)\.(?:java|c|cc|cpp)$`)
	pythonTestFile   = regexp.MustCompile(`^(?:.*(?:Test|test)|(?:Test|test).*)\.py$`)
	otherTestFile    = regexp.MustCompile(`^(?:.*(?:Test|test)|(?:Test|test).*)\.[a-z]+$`)
	testDirectory    = regexp.MustCompile(`Test|Tests|test|tests`)

	testImport = regexp.MustCompile(`org\.junit|junit\.framework|android\.test|android\.support\.test|` +
		`com\.jayway\.android\.robotium|org\.easymock|org\.mockejb|org\.mockito|org\.powermock`)
)

// DocumentedEntityTypes are the code entity types whose DLOC metric is compared.
var DocumentedEntityTypes = []string{"annotation", "class", "enum", "interface", "method"}

// DocumentationMetric is the metric which counts the documentation lines of a code entity.
const DocumentationMetric = "DLOC"

// testCandidate says how a changed file relates to the tests.
type testCandidate int

const (
	notTest testCandidate = iota
	// compiledTest must also change code to count.
	compiledTest
	pythonTest
	otherTest
)

// classifyTestFile trusts the imports when they are known, otherwise the file must live
// in a test directory and be named like a test.
func classifyTestFile(filePath string, imports []string) testCandidate {
	if len(imports) > 0 {
		result := notTest
		for _, imp := range imports {
			if testImport.MatchString(imp) {
				return compiledTest
			}
			if pythonTestImport.MatchString(imp) {
				result = pythonTest
			}
		}
		return result
	}
	dir, name := path.Split(filePath)
	// a file in the root directory is matched by its own name
	if dir == "" {
		dir = name
	}
	if !testDirectory.MatchString(dir) {
		return notTest
	}
	switch {
	case testFile.MatchString(name):
		return compiledTest
	case pythonTestFile.MatchString(name):
		return pythonTest
	case otherTestFile.MatchString(name):
		return otherTest
	}
	return notTest
}

// Evidence detects refactorings, test changes and documentation changes in the code
// of a commit. The detectors never fail: errors are logged and count as no evidence.
type Evidence struct {
	changes store.ChangeStore
	l       core.Logger
}

// NewEvidence creates the detectors over the change store.
func NewEvidence(changes store.ChangeStore, l core.Logger) *Evidence {
	if l == nil {
		l = core.NewLogger()
	}
	return &Evidence{changes: changes, l: l}
}

func (e *Evidence) check(name string, commit *model.Commit, detector func() (bool, error)) bool {
	found, err := detector()
	if err != nil {
		e.l.Errorf("%s evidence of %s: %v", name, commit.Hash, err)
		return false
	}
	return found
}

// Refactoring is true if the refactoring detector recorded anything for the commit.
func (e *Evidence) Refactoring(ctx context.Context, commit *model.Commit) bool {
	return e.check("refactoring", commit, func() (bool, error) {
		count, err := e.changes.RefactoringCount(ctx, commit.ID)
		return count > 0, err
	})
}

// Test is true if a test file was changed. Java and C family tests must change code,
// comments and blank lines do not count.
func (e *Evidence) Test(ctx context.Context, commit *model.Commit) bool {
	return e.check("test", commit, func() (bool, error) {
		actions, err := e.changes.FileActions(ctx, commit.ID, "")
		if err != nil {
			return false, err
		}
		states, err := e.changes.CodeEntityStates(ctx, commit.ID, "file")
		if err != nil {
			return false, err
		}
		imports := map[string][]string{}
		for _, state := range states {
			imports[state.FileID] = append(imports[state.FileID], state.Imports...)
		}
		var candidates []string
		for _, action := range actions {
			switch classifyTestFile(action.Path, imports[action.FileID]) {
			case compiledTest:
				candidates = append(candidates, action.ID)
			case pythonTest, otherTest:
				return true, nil
			}
		}
		if len(candidates) == 0 {
			return false, nil
		}
		changed, err := e.changes.Hunks(ctx, candidates...)
		if err != nil {
			return false, err
		}
		for _, hunk := range changed {
			if hunks.IsLogicalChange(hunk.Content) {
				return true, nil
			}
		}
		return false, nil
	})
}

// Documentation is true if a hunk of a source file touches a doc comment or the DLOC
// metric of a Java entity differs from the parent revision.
func (e *Evidence) Documentation(ctx context.Context, commit *model.Commit) bool {
	return e.check("documentation", commit, func() (bool, error) {
		found, err := e.documentationHunks(ctx, commit)
		if err != nil || found {
			return found, err
		}
		return e.documentationMetrics(ctx, commit)
	})
}

func (e *Evidence) documentationHunks(ctx context.Context, commit *model.Commit) (bool, error) {
	actions, err := e.changes.FileActions(ctx, commit.ID, "")
	if err != nil {
		return false, err
	}
	var ids []string
	for _, action := range actions {
		if hunks.IsDocumentable(action.Path) {
			ids = append(ids, action.ID)
		}
	}
	if len(ids) == 0 {
		return false, nil
	}
	changed, err := e.changes.Hunks(ctx, ids...)
	if err != nil {
		return false, err
	}
	for _, hunk := range changed {
		if hunks.HasDocComment(hunk.Content) {
			return true, nil
		}
	}
	return false, nil
}

type entityKey struct {
	fileID   string
	longName string
}

func (e *Evidence) documentationLines(ctx context.Context, commitID string, files map[string]bool) (
	map[entityKey]float64, error) {
	states, err := e.changes.CodeEntityStates(ctx, commitID, DocumentedEntityTypes...)
	if err != nil {
		return nil, err
	}
	result := map[entityKey]float64{}
	for _, state := range states {
		if !files[state.FileID] {
			continue
		}
		if value, exists := state.Metrics[DocumentationMetric]; exists {
			result[entityKey{state.FileID, state.LongName}] = value
		}
	}
	return result, nil
}

// documentationMetrics pairs the entities of the changed Java files with the same
// entities in every parent. An entity present on one side only counts with its own DLOC.
func (e *Evidence) documentationMetrics(ctx context.Context, commit *model.Commit) (bool, error) {
	actions, err := e.changes.FileActions(ctx, commit.ID, "")
	if err != nil {
		return false, err
	}
	files := map[string]bool{}
	for _, action := range actions {
		if hunks.IsJava(action.Path) {
			files[action.FileID] = true
		}
	}
	if len(files) == 0 {
		return false, nil
	}
	current, err := e.documentationLines(ctx, commit.ID, files)
	if err != nil {
		return false, err
	}
	for _, parent := range commit.Parents {
		parentID, err := e.changes.ResolveRevision(ctx, parent)
		if errors.Cause(err) == store.ErrNotFound {
			continue
		}
		if err != nil {
			return false, err
		}
		previous, err := e.documentationLines(ctx, parentID, files)
		if err != nil {
			return false, err
		}
		for key, value := range current {
			if math.Abs(value-previous[key]) > 0 {
				return true, nil
			}
		}
		for key, value := range previous {
			if _, exists := current[key]; !exists && value != 0 {
				return true, nil
			}
		}
	}
	return false, nil
}

// Collect runs every detector.
func (e *Evidence) Collect(ctx context.Context, commit *model.Commit) map[classifier.Category]bool {
	return map[classifier.Category]bool{
		classifier.Refactoring:   e.Refactoring(ctx, commit),
		classifier.Test:          e.Test(ctx, commit),
		classifier.Documentation: e.Documentation(ctx, commit),
	}
}

// IsTestImport reports whether the import belongs to a Java test framework.
func IsTestImport(imp string) bool {
	return testImport.MatchString(imp)
}
