package fixtures

import (
	"bytes"
	"context"
	_ "embed" // for the project fixture
	"io"
	"strings"

	"github.com/cyraxred/labelshark/internal/core"
	"github.com/cyraxred/labelshark/internal/model"
	"github.com/cyraxred/labelshark/internal/store"
)

//go:embed project.yaml
var projectYAML []byte

// VCSURL is the URL of the repository in the project fixture.
const VCSURL = "https://github.com/apache/commons-lang"

// Store loads the project fixture: Jira, Bugzilla and GitHub trackers with their issues
// and the commits which reference them.
func Store() *store.Memory {
	m, err := store.LoadFixture(bytes.NewReader(projectYAML))
	if err != nil {
		panic(err)
	}
	return m
}

// Trackers returns the trackers of the fixture project in the Jira, Bugzilla, GitHub order.
func Trackers(m *store.Memory) []*model.Tracker {
	vcs, err := m.VCSSystem(context.Background(), VCSURL)
	if err != nil {
		panic(err)
	}
	trackers, err := store.ProjectTrackers(context.Background(), m, vcs, nil)
	if err != nil {
		panic(err)
	}
	return trackers
}

// Commit returns the commit of the fixture with the given identity.
func Commit(m *store.Memory, id string) *model.Commit {
	commit, err := m.Commit(id)
	if err != nil {
		panic(err)
	}
	return commit
}

// Facts returns the facts for Approach.Configure() over the fixture store with a silent logger.
func Facts(m *store.Memory) map[string]interface{} {
	vcs, _ := m.VCSSystem(context.Background(), VCSURL)
	return map[string]interface{}{
		core.ConfigLogger:    SilentLogger(),
		core.FactTrackers:    Trackers(m),
		core.FactIssueStore:  store.IssueStore(m),
		core.FactChangeStore: store.ChangeStore(m),
		core.FactVCSSystem:   vcs,
	}
}

// SilentLogger returns a DefaultLogger which discards everything.
func SilentLogger() *core.DefaultLogger {
	l := core.NewLogger()
	l.I.SetOutput(io.Discard)
	l.W.SetOutput(io.Discard)
	l.E.SetOutput(io.Discard)
	return l
}

// CommitsDataset is a small labeled commit dataset in the ensemble training format.
const CommitsDataset = `message,paths,issue_type,bugfix,refactoring,test,documentation,feature,maintenance
"Fix NPE in StringUtils.join",src/main/java/StringUtils.java,Bug,1,0,0,0,0,0
"fix crash when the input is empty",src/main/java/Parser.java,Bug,1,0,0,0,0,0
"Fixed wrong result of wrap for long words",src/main/java/WordUtils.java,Bug,1,0,0,0,0,0
"fix off by one error in substring",src/main/java/StringUtils.java,Bug,1,0,0,0,0,0
"bug fix: handle null locale",src/main/java/LocaleUtils.java,Bug,1,0,0,0,0,0
"fixes the defect in the date parser",src/main/java/DateUtils.java,Bug,1,0,0,0,0,0
"Refactor the parser into smaller methods",src/main/java/Parser.java,,0,1,0,0,0,0
"refactoring: extract the lexer class",src/main/java/Lexer.java||src/main/java/Parser.java,,0,1,0,0,0,0
"rename variables and restructure the code",src/main/java/Tokenizer.java,,0,1,0,0,0,0
"move helper methods to a utility class",src/main/java/Helper.java||src/main/java/Utils.java,,0,1,0,0,0,0
"Add tests for StringUtils",src/test/java/StringUtilsTest.java,,0,0,1,0,0,0
"add unit test for the parser",src/test/java/ParserTest.java,,0,0,1,0,0,0
"improve test coverage of WordUtils",src/test/java/WordUtilsTest.java,,0,0,1,0,0,0
"new junit tests for dates",src/test/java/DateUtilsTest.java,,0,0,1,0,0,0
"Document the parser API",src/main/java/Parser.java,,0,0,0,1,0,0
"update the javadoc of StringUtils",src/main/java/StringUtils.java,,0,0,0,1,0,0
"improve the README and the user guide",README.md||src/site/guide.md,,0,0,0,1,0,0
"fix typos in the documentation",src/site/index.md,,0,0,0,1,0,0
"Add StringUtils.reverseWords",src/main/java/StringUtils.java,New Feature,0,0,0,0,1,0
"implement support for Java 17 records",src/main/java/Reflection.java,New Feature,0,0,0,0,1,0
"add a new option to the wrap method",src/main/java/WordUtils.java,Improvement,0,0,0,0,1,0
"introduce a new feature flag for parsing",src/main/java/Parser.java,New Feature,0,0,0,0,1,0
"update build config",pom.xml,,0,0,0,0,0,1
"bump the version of junit",pom.xml,,0,0,0,0,0,1
"upgrade maven plugins and dependencies",pom.xml||build.gradle,,0,0,0,0,0,1
"prepare release 3.9",pom.xml||RELEASE-NOTES.txt,,0,0,0,0,0,1
"merge branch master",,,0,0,0,0,0,1
"cleanup the ci configuration",.travis.yml,,0,0,0,0,0,1
`

// CommitsDatasetReader opens CommitsDataset for reading.
func CommitsDatasetReader() io.Reader {
	return strings.NewReader(CommitsDataset)
}

// IssuesDataset is a small labeled issue dataset in the issue classifier training format.
const IssuesDataset = `title,description,bug
"NullPointerException in join","Calling join with a null separator crashes with an exception",1
"Crash on empty input","The parser throws an exception and crashes when the input is empty",1
"Wrong result of wrap","wrap returns a wrong result for long words, the output is broken",1
"Off by one error","substring returns a wrong character, the index is broken",1
"Exception in DateUtils","parsing a date throws an unexpected exception and fails",1
"Incorrect rounding","round gives incorrect values, the result is wrong",1
"Add reverseWords","It would be nice to have a method which reverses words",0
"Support Java 17","Please add support for records and sealed classes",0
"Improve the documentation","The user guide should describe the new options",0
"New option for wrap","Add an option to keep the indentation when wrapping",0
"Speed up split","split could be faster with a precompiled pattern, please improve",0
"Provide a builder","A builder class would be a nice addition to the API",0
`
