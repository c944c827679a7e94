package issues

import (
	"testing"

	"github.com/cyraxred/labelshark/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestExtractJira(t *testing.T) {
	assert.Equal(t, []string{"LANG-1"}, Extract("LANG-1: fix NPE", model.FamilyJira))
	assert.Equal(t, []string{"IO-12", "LANG-1"},
		Extract("Merge LANG-1,IO-12 and (LANG-1)\n[IO-12] again", model.FamilyJira))
	assert.Equal(t, []string{"MATH_2-7"}, Extract("see MATH_2-7", model.FamilyJira))
	// the anchor rejects hyphenated words glued to other text
	assert.Nil(t, Extract("see fooBAR-12", model.FamilyJira))
	assert.Nil(t, Extract("lang-1 is lower case", model.FamilyJira))
	assert.Nil(t, Extract("update build config", model.FamilyJira))
}

func TestExtractBugzilla(t *testing.T) {
	assert.Equal(t, []string{"100"}, Extract("bug 100: the parser loops", model.FamilyBugzilla))
	assert.Equal(t, []string{"12", "13"}, Extract("Bugs #12 and Issue13", model.FamilyBugzilla))
	assert.Equal(t, []string{"77"}, Extract("bugzilla77", model.FamilyBugzilla))
	assert.Equal(t, []string{"4242"},
		Extract("see https://bz.apache.org/bugzilla/show_bug.cgi?id=4242", model.FamilyBugzilla))
	assert.Nil(t, Extract("Fixes #42", model.FamilyBugzilla))
}

func TestExtractGitHub(t *testing.T) {
	assert.Equal(t, []string{"42"}, Extract("Fixes #42", model.FamilyGitHub))
	assert.Equal(t, []string{"42"}, Extract("#42 is closed", model.FamilyGitHub))
	assert.Equal(t, []string{"7", "8"}, Extract("issue #7, see also (#8)", model.FamilyGitHub))
	assert.Equal(t, []string{"15"},
		Extract("https://github.com/owner/repo/issues/15", model.FamilyGitHub))
	assert.Equal(t, []string{"3"}, Extract("BUG 3", model.FamilyGitHub))
	assert.Nil(t, Extract("color#42", model.FamilyGitHub))
	assert.Nil(t, Extract("bugzilla/show_bug.cgi?id=99", model.FamilyGitHub))
}

func TestExtractUnknown(t *testing.T) {
	assert.Nil(t, Extract("LANG-1 bug 2 #3", model.FamilyUnknown))
	assert.Nil(t, Pattern(model.FamilyUnknown))
}

func TestKeywordScore(t *testing.T) {
	assert.Equal(t, 0, KeywordScore("update build config"))
	assert.Equal(t, 1, KeywordScore("Fix typo"))
	assert.Equal(t, 3, KeywordScore("fixed two bugs\nPATCH from the mailing list"))
	assert.Equal(t, 2, KeywordScore("defects and issues"))
	assert.Equal(t, 0, KeywordScore("prefix suffix debugging"))
	assert.Equal(t, 1, KeywordScore("fixes"))
}
