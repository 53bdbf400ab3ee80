package partition_test

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/math/fixed"

	"github.com/npillmayer/textsplit/dom"
	"github.com/npillmayer/textsplit/internal/textflow"
	"github.com/npillmayer/textsplit/partition"
)

// --- Test Suite Preparation ------------------------------------------------

type PartitionTestEnviron struct {
	suite.Suite
	flow *textflow.Flow
}

// listen for 'go test' command --> run test methods
func TestPartitionFunctions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "textsplit.partition")
	defer teardown()
	suite.Run(t, new(PartitionTestEnviron))
}

// run once, before test suite methods
func (env *PartitionTestEnviron) SetupSuite() {
	env.T().Log("Setting up test suite")
	env.flow = textflow.New(textflow.Config{
		Width:    fixed.I(320),
		FontSize: fixed.I(16),
	})
}

func (env *PartitionTestEnviron) split(markup string, measure bool) *partition.Partition {
	root, err := dom.ParseFragment(markup)
	env.Require().NoError(err)
	p, err := partition.Split(root, env.flow, measure)
	env.Require().NoError(err)
	return p
}

// --- Tests -----------------------------------------------------------------

func (env *PartitionTestEnviron) TestWordBoundaries() {
	p := env.split("Take it to the limit", false)
	env.Equal(5, len(p.Words))
	env.Equal("Take", p.Words[0].Text())
	env.Equal("limit", p.Words[4].Text())
	for _, w := range p.Words {
		env.False(w.NoSpaceBefore)
	}
}

func (env *PartitionTestEnviron) TestTextConservation() {
	inputs := []string{
		"Take it to the limit",
		"word—continuation",
		"self-contained, mostly",
		"a <em>nested <b>run</b></em> of text",
		"  leading and trailing  ",
	}
	for _, input := range inputs {
		p := env.split(input, false)
		root, _ := dom.ParseFragment(input)
		trimmed := strings.Join(strings.Fields(dom.Text(root)), " ")
		env.Equal(trimmed, p.JoinedText(), "input %q", input)
	}
}

func (env *PartitionTestEnviron) TestDashSplitsWithoutSpace() {
	p := env.split("word—continuation", false)
	env.Require().Equal(2, len(p.Words))
	env.Equal("word—", p.Words[0].Text())
	env.Equal("continuation", p.Words[1].Text())
	env.True(p.Words[1].NoSpaceBefore)
	env.Equal("word—continuation", p.JoinedText())
}

func (env *PartitionTestEnviron) TestGraphemeFidelity() {
	p := env.split("WAVE Typography", false)
	count := 0
	joined := ""
	for _, w := range p.Words {
		for _, g := range w.Chars {
			count++
			joined += g.Text
		}
	}
	env.Equal(14, count)
	env.Equal("WAVETypography", joined)
}

func (env *PartitionTestEnviron) TestEmojiStaysAtomic() {
	p := env.split("go \U0001F468‍\U0001F469‍\U0001F466 now", false)
	env.Require().Equal(3, len(p.Words))
	env.Equal(1, len(p.Words[1].Chars))
}

func (env *PartitionTestEnviron) TestMeasuredBaseline() {
	p := env.split("ab cd", true)
	env.Require().Equal(2, len(p.Words))
	env.Equal(fixed.I(0), p.Words[0].Chars[0].Left)
	env.Equal(fixed.I(8), p.Words[0].Chars[1].Left)
	// second word starts after "ab " = 24 units
	env.Equal(fixed.I(24), p.Words[1].StartLeft)
}

func (env *PartitionTestEnviron) TestAncestorAnnotation() {
	p := env.split(`x <a href="#">y z</a>`, false)
	env.Require().Equal(3, len(p.Words))
	env.Empty(p.Words[0].Chars[0].Ancestors)
	chainY := p.Words[1].Chars[0].Ancestors
	chainZ := p.Words[2].Chars[0].Ancestors
	env.Require().Len(chainY, 1)
	env.Equal("a", chainY[0].TagName)
	env.True(dom.EqualChains(chainY, chainZ))
}

func (env *PartitionTestEnviron) TestEmptyContent() {
	for _, markup := range []string{"", "   ", " \n\t "} {
		p := env.split(markup, false)
		env.True(p.Empty(), "markup %q", markup)
	}
}

func (env *PartitionTestEnviron) TestInvalidRoot() {
	_, err := partition.Split(nil, env.flow, false)
	env.Error(err)
	_, err = partition.Split(dom.NewText("loose text"), env.flow, false)
	env.Error(err)
}

func (env *PartitionTestEnviron) TestSnapshotCaptured() {
	markup := `keep <em>this</em> verbatim`
	p := env.split(markup, false)
	env.Equal(markup, p.Snapshot)
}
