package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jobradar/job-radar/internal/cluster"
	"github.com/jobradar/job-radar/internal/logger"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Namer asks Gemini to label a cluster from its dominant skills and sample
// job titles.
type Namer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const (
	defaultMaxLogLength = 200
	maxNameWords        = 6
)

func NewNamer(generator contentGenerator, log *zap.Logger, maxLogLength int) *Namer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Namer{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

// NameCluster returns a short human label for the cluster. The response
// contract is plain text: a single line, a handful of words, no markup.
func (n *Namer) NameCluster(ctx context.Context, insight *cluster.Insight) (string, error) {
	if insight == nil {
		return "", fmt.Errorf("cluster insight is required")
	}
	if len(insight.TopSkills) == 0 {
		return "", fmt.Errorf("cluster %d has no skills to name it by", insight.Cluster)
	}

	prompt := buildPrompt(insight)

	n.logger.Debug("gemini cluster naming request",
		zap.Int("cluster", insight.Cluster),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, n.maxLogLen)),
	)

	raw, err := n.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	n.logger.Debug("gemini cluster naming response",
		zap.Int("cluster", insight.Cluster),
		zap.String("response_preview", logger.TruncateForLog(raw, n.maxLogLen)),
	)

	name, err := parseName(raw)
	if err != nil {
		return "", fmt.Errorf("cluster %d: %w", insight.Cluster, err)
	}

	return name, nil
}

func buildPrompt(insight *cluster.Insight) string {
	var b strings.Builder
	b.WriteString("You label job role categories. ")
	b.WriteString("Given the dominant skills and example job titles of one category, ")
	b.WriteString(fmt.Sprintf("answer with only the category name, at most %d words, plain text, no quotes.\n\n", maxNameWords))
	b.WriteString("Dominant skills: ")
	b.WriteString(strings.Join(insight.TopSkills, ", "))
	b.WriteString("\n")
	if len(insight.SampleTitles) > 0 {
		b.WriteString("Example titles: ")
		b.WriteString(strings.Join(insight.SampleTitles, "; "))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("Postings in category: %d\n", insight.PostingCount))
	b.WriteString("\nCategory name:")
	return b.String()
}

func parseName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, "```text")
	name = strings.TrimPrefix(name, "```")
	name = strings.TrimSuffix(name, "```")
	name = strings.TrimSpace(name)
	if idx := strings.IndexByte(name, '\n'); idx != -1 {
		name = name[:idx]
	}
	name = strings.Trim(name, "`\"'*")
	name = strings.TrimSpace(name)

	if name == "" {
		return "", fmt.Errorf("empty cluster name in response")
	}

	words := strings.Fields(name)
	if len(words) > maxNameWords {
		words = words[:maxNameWords]
	}
	return strings.Join(words, " "), nil
}
