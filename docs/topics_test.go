package docs_test

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/fintrack/assistant"
	"github.com/etnz/fintrack/docs"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every .md file
	// (except readme.md) is listed in readme.md.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := docs.GetTopic(topic); err != nil {
			t.Errorf("failed to get topic %q: %v", topic, err)
		}
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		topic := strings.TrimSuffix(filepath.Base(f), ".md")
		if topic != "readme" && !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in docs/readme.md", topic)
		}
	}

	all, err := docs.GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(listed) {
		t.Errorf("GetAllTopics() = %v, readme lists %v", all, listed)
	}
	if _, err := docs.GetTopic("nope"); err == nil {
		t.Error("GetTopic(nope) expected an error")
	}
}

// jsonBlocks returns the content of the ```json blocks of a markdown file.
func jsonBlocks(t *testing.T, file string) []string {
	t.Helper()
	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(content))

	var blocks []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || string(fcb.Language(content)) != "json" {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, b.String())
		return ast.WalkContinue, nil
	})
	return blocks
}

func TestActionExamples(t *testing.T) {
	// Every example of the actions topic is understood by the assistant, and
	// every action kind has an example.
	blocks := jsonBlocks(t, "actions.md")
	if len(blocks) == 0 {
		t.Fatal("no json block in actions.md")
	}
	seen := map[string]bool{}
	for _, block := range blocks {
		actions, err := assistant.DecodeActions([]byte(block))
		if err != nil {
			t.Errorf("DecodeActions(%s) error = %v", block, err)
			continue
		}
		for _, a := range actions {
			switch a := a.(type) {
			case assistant.Unknown:
				t.Errorf("example %s holds an unknown action %q", block, a.Kind())
			case assistant.Invalid:
				t.Errorf("example %s holds an invalid %s action: %v", block, a.Kind(), a.Err)
			}
			seen[a.Kind()] = true
		}
	}
	for _, kind := range []string{
		assistant.KindAddTransaction,
		assistant.KindCreateAccount,
		assistant.KindDeleteAccount,
		assistant.KindAskUser,
		assistant.KindInformUser,
		assistant.KindGetAccounts,
	} {
		if !seen[kind] {
			t.Errorf("actions.md has no example of %s", kind)
		}
	}
}
